package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// TTSService generates prompt audio with Google Translate's text-to-speech
// endpoint and caches the MP3 files on disk
type TTSService struct {
	audioDir  string
	urlPrefix string
	endpoint  string
	client    *http.Client
}

const (
	ttsRequestTimeout = 10 * time.Second
	googleTTSEndpoint = "https://translate.google.com/translate_tts"

	// VoiceSlow asks for the slowed-down reading
	VoiceSlow = "slow"
)

// NewTTSService creates a TTS service writing into audioDir. Generated files
// are served under urlPrefix.
func NewTTSService(audioDir, urlPrefix string) *TTSService {
	return &TTSService{
		audioDir:  audioDir,
		urlPrefix: urlPrefix,
		endpoint:  googleTTSEndpoint,
		client:    &http.Client{Timeout: ttsRequestTimeout},
	}
}

// Speak makes sure audio for text exists so the client can play it
func (s *TTSService) Speak(ctx context.Context, text, lang, voice string) error {
	_, err := s.GenerateAudioFile(ctx, text, lang, voice)
	return err
}

// GenerateAudioFile converts text to speech and saves it as MP3.
// Returns the filename (not full path) on success.
func (s *TTSService) GenerateAudioFile(ctx context.Context, text, lang, voice string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text to speak")
	}

	filename := audioFilename(text, lang, voice)
	fullPath := filepath.Join(s.audioDir, filename)

	if _, err := os.Stat(fullPath); err == nil {
		return filename, nil
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}
	if err := s.generateUsingGoogleTTS(ctx, text, lang, voice, fullPath); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}

	return filename, nil
}

// AudioURL returns the public URL of a generated file
func (s *TTSService) AudioURL(filename string) string {
	return path.Join(s.urlPrefix, filename)
}

// URLFor returns the public URL the audio for text is, or will be, served at
func (s *TTSService) URLFor(text, lang, voice string) string {
	return s.AudioURL(audioFilename(strings.TrimSpace(text), lang, voice))
}

// audioFilename hashes the request so Han text never reaches the filesystem
func audioFilename(text, lang, voice string) string {
	sum := sha256.Sum256([]byte(lang + "\x00" + voice + "\x00" + text))
	return fmt.Sprintf("%s_%s.mp3", strings.ToLower(lang), hex.EncodeToString(sum[:8]))
}

func (s *TTSService) generateUsingGoogleTTS(ctx context.Context, text, lang, voice, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", lang)
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len([]rune(text))))
	if voice == VoiceSlow {
		params.Set("ttsspeed", "0.24")
	}

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set user agent (required by Google)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Partial downloads must never become cache hits
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".tts-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return os.Rename(tmp.Name(), outputPath)
}

// DeleteAudioFile removes an audio file
func (s *TTSService) DeleteAudioFile(filename string) error {
	fullPath := filepath.Join(s.audioDir, filepath.Base(filename))

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil // Already deleted
	}

	return os.Remove(fullPath)
}
