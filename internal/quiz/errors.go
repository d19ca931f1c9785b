package quiz

import "errors"

var (
	// ErrNoWordsDue is returned when a session is requested but nothing is due
	ErrNoWordsDue = errors.New("quiz: no words due")
	// ErrEmptyPool is returned by the selector when there is nothing left to draw
	ErrEmptyPool = errors.New("quiz: permutation pool is empty")
	// ErrNotAsking is returned for learner input that arrives while no question is open
	ErrNotAsking = errors.New("quiz: no question is awaiting an answer")
	// ErrFinished is returned for any input after the session has finished
	ErrFinished = errors.New("quiz: session finished")
	// ErrNotFinished is returned when a report is requested before the pool is empty
	ErrNotFinished = errors.New("quiz: session not finished")
	// ErrNoSpeechDetected is returned by a Listener that heard nothing
	ErrNoSpeechDetected = errors.New("quiz: no speech detected")
	// ErrAborted is returned by a Listener whose recognition was cancelled
	ErrAborted = errors.New("quiz: recognition aborted")
	// ErrModalityDisabled is returned for input through a modality the config turned off
	ErrModalityDisabled = errors.New("quiz: answer modality disabled")
	// ErrInvalidPriority is returned for unknown priority pair codes
	ErrInvalidPriority = errors.New("quiz: invalid priority")
)
