package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

var (
	// ErrTranscriptFailed indicates the transcription job reached the
	// terminal "error" status.
	ErrTranscriptFailed = errors.New("transcription failed")

	// ErrTranscriptTimeout indicates the job did not reach a terminal
	// status within the configured wait budget.
	ErrTranscriptTimeout = errors.New("transcription timed out")
)

// AssemblyAI is a client for the AssemblyAI v2 REST API. A transcription is
// a three-step flow: upload the audio bytes, submit a job referencing the
// upload URL, then poll the job until it completes or fails. Wait bounds the
// poll loop with an explicit timeout instead of looping forever.
type AssemblyAI struct {
	baseURL      string
	apiKey       string
	lang         language.Tag
	pollInterval time.Duration
	timeout      time.Duration
	httpClient   *http.Client
}

// NewAssemblyAI builds an AssemblyAI client. baseURL is the API root
// (e.g. "https://api.assemblyai.com/v2"); lang is the language hint for
// recognition.
func NewAssemblyAI(baseURL, apiKey string, lang language.Tag, pollInterval, timeout time.Duration) *AssemblyAI {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &AssemblyAI{
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:       strings.TrimSpace(apiKey),
		lang:         lang,
		pollInterval: pollInterval,
		timeout:      timeout,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Transcribe runs the full upload → submit → wait flow for the given audio
// stream and returns the recognized text.
func (a *AssemblyAI) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	audioURL, err := a.Upload(ctx, audio)
	if err != nil {
		return "", err
	}
	id, err := a.Submit(ctx, audioURL)
	if err != nil {
		return "", err
	}
	return a.Wait(ctx, id)
}

// Upload streams raw audio bytes to the API and returns the upload URL to
// reference in a transcription job.
func (a *AssemblyAI) Upload(ctx context.Context, audio io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/upload", audio)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.do(req, &out); err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("upload audio: empty upload_url")
	}
	return out.UploadURL, nil
}

// Submit creates a transcription job for an uploaded audio URL and returns
// the job id.
func (a *AssemblyAI) Submit(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"audio_url":     audioURL,
		"language_code": a.lang.String(),
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var out transcriptStatus
	if err := a.do(req, &out); err != nil {
		return "", fmt.Errorf("submit transcript: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("submit transcript: empty job id")
	}
	return out.ID, nil
}

// Wait polls the job on a fixed interval until it reaches a terminal state.
// It returns the transcribed text on completion, ErrTranscriptFailed when
// the job status is "error", and ErrTranscriptTimeout when the wait budget
// elapses first.
func (a *AssemblyAI) Wait(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		st, err := a.poll(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return "", ErrTranscriptTimeout
			}
			return "", err
		}
		switch st.Status {
		case "completed":
			return st.Text, nil
		case "error":
			if st.Error != "" {
				return "", fmt.Errorf("%w: %s", ErrTranscriptFailed, st.Error)
			}
			return "", ErrTranscriptFailed
		}

		select {
		case <-ctx.Done():
			return "", ErrTranscriptTimeout
		case <-ticker.C:
		}
	}
}

// poll fetches the current job status.
func (a *AssemblyAI) poll(ctx context.Context, id string) (*transcriptStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/transcript/"+id, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", a.apiKey)

	var out transcriptStatus
	if err := a.do(req, &out); err != nil {
		return nil, fmt.Errorf("poll transcript: %w", err)
	}
	return &out, nil
}

// do executes a request and decodes the JSON response into out.
func (a *AssemblyAI) do(req *http.Request, out any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("api error: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// transcriptStatus is the subset of the transcript resource the client uses.
type transcriptStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}
