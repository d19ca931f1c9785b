package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"hanzidrill/internal/models"
)

// Pacing delays between an answer and the next question
const (
	DefaultCorrectDelay = time.Second
	DefaultIdkDelay     = 2 * time.Second
)

// PromptLang is the synthesis language for spoken prompts
const PromptLang = "zh-CN"

// Options configures a Machine. Zero values get working defaults.
type Options struct {
	CorrectDelay time.Duration
	IdkDelay     time.Duration

	Speaker   Speaker
	Voice     string
	Listener  Listener
	Strokes   StrokeQuizzer
	Romanizer Romanizer

	Rand      *rand.Rand
	Now       func() time.Time
	AfterFunc AfterFunc

	// OnChange is called after every transition with the new session.
	// Callbacks run with the machine locked and must not call back into it.
	OnChange func(Session)
	// OnFinish is called exactly once, when the pool becomes empty.
	OnFinish func(Session, Result)
}

// Machine drives a Session through the question loop. Every learner or I/O
// event swaps the session under one lock, so two events can never act on
// the same active permutation.
type Machine struct {
	mu      sync.Mutex
	opts    Options
	session Session

	// gen changes on every transition; timers and stroke events from an
	// older generation are ignored.
	gen uint64

	stopTimer     func() bool
	cancelSpeech  context.CancelFunc
	cancelListen  context.CancelFunc
	listenSeq     uint64
	cancelStrokes func()

	notice   string
	finished bool
	closed   bool
}

// NewMachine takes over s, which is either freshly started or restored from
// a snapshot, and resumes it from its current state.
func NewMachine(s Session, opts Options) *Machine {
	if opts.CorrectDelay <= 0 {
		opts.CorrectDelay = DefaultCorrectDelay
	}
	if opts.IdkDelay <= 0 {
		opts.IdkDelay = DefaultIdkDelay
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = timeAfterFunc
	}

	m := &Machine{opts: opts, session: s}
	m.mu.Lock()
	m.enter()
	m.mu.Unlock()
	return m
}

// Session returns the current session value
func (m *Machine) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Notice returns the latest feedback message for the learner
func (m *Machine) Notice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notice
}

// Done reports whether the session has finished
func (m *Machine) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finished
}

// Submit grades a typed answer
func (m *Machine) Submit(input string) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Wrong, ErrFinished
	}

	next, out, err := m.session.Submit(input)
	if err != nil {
		return out, err
	}
	m.feedback(out)
	if out == Correct {
		m.apply(next)
	}
	return out, nil
}

// SubmitTranscript grades a transcript produced by an external recognizer
func (m *Machine) SubmitTranscript(transcript string) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Wrong, ErrFinished
	}
	return m.submitTranscript(transcript)
}

func (m *Machine) submitTranscript(transcript string) (Outcome, error) {
	next, out, err := m.session.SubmitTranscript(transcript, m.opts.Romanizer)
	if err != nil {
		if errors.Is(err, ErrNoSpeechDetected) {
			m.notice = "No speech detected, try again"
		}
		return out, err
	}
	m.feedback(out)
	if out == Correct {
		m.apply(next)
	}
	return out, nil
}

// Listen records an answer through the Listener. Any synthesis and any
// earlier recognition are cancelled before recording starts. A recognition
// that is aborted, or that finishes after the question moved on, is
// discarded with ErrAborted.
func (m *Machine) Listen(ctx context.Context) (Outcome, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return Wrong, ErrFinished
	}
	if err := m.session.checkAsking(); err != nil {
		m.mu.Unlock()
		return Wrong, err
	}
	if m.opts.Listener == nil || !m.session.speechEnabled() {
		m.mu.Unlock()
		return Wrong, ErrModalityDisabled
	}

	m.stopSpeech()
	m.stopListening()
	lctx, cancel := context.WithCancel(ctx)
	m.listenSeq++
	seq, gen := m.listenSeq, m.gen
	lang := m.session.SpeechLang()
	m.cancelListen = cancel
	listener := m.opts.Listener
	m.mu.Unlock()

	transcript, err := listener.Listen(lctx, lang)

	m.mu.Lock()
	defer m.mu.Unlock()
	superseded := seq != m.listenSeq
	aborted := superseded || lctx.Err() != nil || errors.Is(err, ErrAborted)
	if !superseded {
		m.cancelListen = nil
	}
	cancel()

	if aborted || gen != m.gen || m.closed {
		return Wrong, ErrAborted
	}
	if err != nil {
		if errors.Is(err, ErrNoSpeechDetected) {
			m.notice = "No speech detected, try again"
			return Wrong, err
		}
		return Wrong, fmt.Errorf("listen: %w", err)
	}
	return m.submitTranscript(transcript)
}

// MarkIdk fails the active permutation without removing it from the pool
func (m *Machine) MarkIdk() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrFinished
	}
	return m.markIdk()
}

func (m *Machine) markIdk() error {
	next, err := m.session.MarkIdk()
	if err != nil {
		return err
	}

	word := m.session.Word()
	cs := m.session.Config.CharSet
	if m.session.Active.Answer == Character && m.opts.Strokes != nil {
		if m.cancelStrokes != nil {
			m.cancelStrokes()
			m.cancelStrokes = nil
		}
		m.opts.Strokes.Animate(word.Character(cs))
	}
	m.notice = fmt.Sprintf("The answer was: %s", strings.Join(m.session.Expected().Choices(), " / "))
	m.apply(next)
	return nil
}

// Flashcard self-grades the active permutation in flashcard mode
func (m *Machine) Flashcard(known bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrFinished
	}
	if !m.session.Config.UseFlashcards {
		return ErrModalityDisabled
	}
	if !known {
		return m.markIdk()
	}
	next, err := m.session.Accept()
	if err != nil {
		return err
	}
	m.feedback(Correct)
	m.apply(next)
	return nil
}

// CompleteStrokes reports that every stroke of a character answer was drawn
func (m *Machine) CompleteStrokes() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.strokeComplete()
}

// StrokeMistake reports one wrongly drawn stroke
func (m *Machine) StrokeMistake() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.strokeMistake()
}

func (m *Machine) strokeComplete() error {
	if err := m.checkStrokes(); err != nil {
		return err
	}
	next, err := m.session.Accept()
	if err != nil {
		return err
	}
	m.cancelStrokes = nil
	m.feedback(Correct)
	m.apply(next)
	return nil
}

func (m *Machine) strokeMistake() error {
	if err := m.checkStrokes(); err != nil {
		return err
	}
	m.notice = "Wrong stroke, try again"
	return nil
}

func (m *Machine) checkStrokes() error {
	if m.closed {
		return ErrFinished
	}
	if err := m.session.checkAsking(); err != nil {
		return err
	}
	if m.session.Active.Answer != Character {
		return fmt.Errorf("%w: active question has no character answer", ErrModalityDisabled)
	}
	return nil
}

// Close stops timers and in-flight I/O. The session can no longer change.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.gen++
	m.stopPending()
}

func (m *Machine) feedback(out Outcome) {
	switch out {
	case Correct:
		m.notice = "Correct!"
	case WrongTone:
		m.notice = "Right syllables, wrong tone"
	default:
		m.notice = "Not quite, try again"
	}
}

// apply installs next as the current session and enters its state
func (m *Machine) apply(next Session) {
	m.gen++
	m.stopPending()
	m.session = next
	if m.opts.OnChange != nil {
		m.opts.OnChange(next)
	}
	m.enter()
}

func (m *Machine) enter() {
	switch m.session.State {
	case Asking:
		m.prompt()
	case Answered:
		m.schedule(m.opts.CorrectDelay)
	case Skipped:
		m.schedule(m.opts.IdkDelay)
	case Finished:
		m.finish()
	}
}

func (m *Machine) prompt() {
	s := m.session
	char := s.Word().Character(s.Config.CharSet)

	if s.Config.UseSound && s.Active.Question == Pronunciation && m.opts.Speaker != nil {
		m.speak(char)
	}

	if s.Active.Answer == Character && m.opts.Strokes != nil {
		gen := m.gen
		m.cancelStrokes = m.opts.Strokes.Quiz(char, StrokeEvents{
			OnComplete: func() { m.strokeEvent(gen, m.strokeComplete) },
			OnMistake:  func() { m.strokeEvent(gen, m.strokeMistake) },
		})
	}
}

func (m *Machine) strokeEvent(gen uint64, handle func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	if err := handle(); err != nil {
		log.Printf("Ignoring stroke event: %v", err)
	}
}

func (m *Machine) speak(text string) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelSpeech = cancel
	speaker, voice, gen := m.opts.Speaker, m.opts.Voice, m.gen

	go func() {
		defer cancel()
		err := speaker.Speak(ctx, text, PromptLang, voice)
		if err == nil || ctx.Err() != nil {
			return
		}
		log.Printf("Error speaking prompt %q: %v", text, err)
		m.mu.Lock()
		if gen == m.gen {
			m.notice = "Audio unavailable, answer another way"
		}
		m.mu.Unlock()
	}()
}

func (m *Machine) schedule(d time.Duration) {
	gen := m.gen
	m.stopTimer = m.opts.AfterFunc(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.gen || m.closed {
			return
		}
		m.stopTimer = nil
		next, err := m.session.Advance(m.opts.Rand)
		if err != nil {
			log.Printf("Error drawing next question for session %s: %v", m.session.ID, err)
			return
		}
		m.apply(next)
	})
}

func (m *Machine) finish() {
	if m.finished {
		return
	}
	m.finished = true
	res, err := m.session.Finish(models.DateOf(m.opts.Now()))
	if err != nil {
		log.Printf("Error finishing session %s: %v", m.session.ID, err)
		return
	}
	if m.opts.OnFinish != nil {
		m.opts.OnFinish(m.session, res)
	}
}

func (m *Machine) stopPending() {
	if m.stopTimer != nil {
		m.stopTimer()
		m.stopTimer = nil
	}
	if m.cancelStrokes != nil {
		m.cancelStrokes()
		m.cancelStrokes = nil
	}
	m.stopSpeech()
	m.stopListening()
}

func (m *Machine) stopSpeech() {
	if m.cancelSpeech != nil {
		m.cancelSpeech()
		m.cancelSpeech = nil
	}
}

func (m *Machine) stopListening() {
	if m.cancelListen != nil {
		m.cancelListen()
		m.cancelListen = nil
	}
}
