package quiz

import (
	"context"
	"time"
)

// Speaker synthesises speech for a prompt
type Speaker interface {
	Speak(ctx context.Context, text, lang, voice string) error
}

// Listener records one utterance and returns its transcript. It fails with
// ErrNoSpeechDetected when nothing was heard and ErrAborted (or the context
// error) when cancelled.
type Listener interface {
	Listen(ctx context.Context, lang string) (string, error)
}

// StrokeEvents are delivered by a StrokeQuizzer while a character is drawn.
// They must not be invoked from inside Quiz itself.
type StrokeEvents struct {
	OnComplete func()
	OnMistake  func()
}

// StrokeQuizzer runs the handwriting widget for character answers
type StrokeQuizzer interface {
	// Quiz starts a stroke quiz for character and returns a function that cancels it
	Quiz(character string, events StrokeEvents) (cancel func())
	// Animate plays the correct strokes for character
	Animate(character string)
}

// AfterFunc schedules f after d and returns a function that stops it
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func timeAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}
