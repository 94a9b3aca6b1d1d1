// Package bot implements the Telegram assistant: the per-message handler
// logic and the long-polling update loop. The handler checks authorization,
// transcribes voice notes, resolves answers through the knowledge store and
// the external language model, persists newly generated answers, and sends
// replies with related-question suggestions.
//
// The messaging platform and every external collaborator sit behind narrow
// interfaces so the handler is testable with fakes.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Drew466/auth-server-tbot/internal/stt"
)

// Fixed user-facing replies. The related-topics block is appended to a real
// answer; everything else here is terminal for the message.
const (
	msgAuthorizeTemplate = "🔐 To get access, please authorize here:\n%s"
	msgVoiceUnrecognized = "⚠️ Could not recognize the audio."
	msgVoiceFailed       = "⚠️ Error while processing the voice message."
	relatedHeader        = "\n\n📌 Related topics:\n"
)

// Inbound is a normalized inbound message from the messaging platform.
type Inbound struct {
	ChatID      int64
	UserID      int64
	Text        string // set for text messages
	VoiceFileID string // set for voice messages
}

// Messenger delivers outbound replies and exposes voice-message downloads.
type Messenger interface {
	// Send posts a text reply to a chat.
	Send(ctx context.Context, chatID int64, text string) error
	// VoiceFile opens the binary content of a voice message for reading.
	VoiceFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Authorizer reports whether a user currently holds a valid grant.
type Authorizer interface {
	IsAuthorized(ctx context.Context, userID int64) (bool, error)
}

// Knowledge is the persisted question/answer store consulted before the
// language model.
type Knowledge interface {
	Search(ctx context.Context, question string) (string, bool, error)
	Save(ctx context.Context, question, answer string) error
	Related(ctx context.Context, query string) ([]string, error)
}

// Resolver produces a reply for a question, optionally grounded on a stored
// answer. A non-nil error means the reply is the fixed fallback and must not
// be persisted.
type Resolver interface {
	Resolve(ctx context.Context, question, storedAnswer string, hasStored bool) (string, error)
}

// Transcriber turns an audio stream into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// AudioConverter transcodes a voice-note container into the format the
// transcription API accepts.
type AudioConverter interface {
	OggToMP3(ctx context.Context, source, dest string) error
}

// Handler processes one inbound message at a time. It holds no mutable
// state of its own; everything it touches lives in the injected
// collaborators.
type Handler struct {
	Messenger  Messenger
	Auth       Authorizer
	Knowledge  Knowledge
	Resolver   Resolver
	STT        Transcriber
	Transcoder AudioConverter

	// AuthServerURL is embedded in the "please authorize" reply.
	AuthServerURL string
	// TempDir overrides the working directory for voice files (tests).
	TempDir string

	Log zerolog.Logger
}

// HandleText processes an inbound text message end to end.
func (h *Handler) HandleText(ctx context.Context, in Inbound) {
	lg := h.Log.With().Int64("user_id", in.UserID).Int64("chat_id", in.ChatID).Logger()

	if !h.gate(ctx, lg, in) {
		return
	}

	question := strings.TrimSpace(in.Text)
	if question == "" {
		return
	}
	h.answer(ctx, lg, in.ChatID, question)
}

// HandleVoice processes an inbound voice message: download, transcode,
// transcribe, echo the recognized text, then answer it like a text message.
// Failures on the voice path are absorbed here: logged, and answered with a
// fixed reply.
func (h *Handler) HandleVoice(ctx context.Context, in Inbound) {
	lg := h.Log.With().Int64("user_id", in.UserID).Int64("chat_id", in.ChatID).Logger()

	if !h.gate(ctx, lg, in) {
		return
	}

	question, err := h.transcribeVoice(ctx, in.VoiceFileID)
	if err != nil {
		lg.Error().Err(err).Msg("voice message failed")
		reply := msgVoiceFailed
		if errors.Is(err, stt.ErrTranscriptFailed) || errors.Is(err, stt.ErrTranscriptTimeout) {
			reply = msgVoiceUnrecognized
		}
		h.send(ctx, lg, in.ChatID, reply)
		return
	}

	question = strings.TrimSpace(question)
	if question == "" {
		h.send(ctx, lg, in.ChatID, msgVoiceUnrecognized)
		return
	}

	h.send(ctx, lg, in.ChatID, "🎙 Recognized:\n"+question)
	h.answer(ctx, lg, in.ChatID, question)
}

// gate enforces the authorization check; it replies with the auth-server
// link and returns false when the user is not authorized.
func (h *Handler) gate(ctx context.Context, lg zerolog.Logger, in Inbound) bool {
	ok, err := h.Auth.IsAuthorized(ctx, in.UserID)
	if err != nil {
		lg.Error().Err(err).Msg("authorization check failed")
		return false
	}
	if !ok {
		h.send(ctx, lg, in.ChatID, fmt.Sprintf(msgAuthorizeTemplate, h.AuthServerURL))
		return false
	}
	return true
}

// answer runs the shared question flow: knowledge lookup, resolution,
// conditional persistence, related-topics suggestions, reply.
func (h *Handler) answer(ctx context.Context, lg zerolog.Logger, chatID int64, question string) {
	stored, hasStored, err := h.Knowledge.Search(ctx, question)
	if err != nil {
		lg.Error().Err(err).Msg("knowledge lookup failed")
		hasStored = false
	}

	reply, resolveErr := h.Resolver.Resolve(ctx, question, stored, hasStored)
	if resolveErr != nil {
		lg.Error().Err(resolveErr).Msg("answer resolution failed")
	}

	// Persist only fresh, successfully resolved answers.
	if !hasStored && resolveErr == nil {
		if err := h.Knowledge.Save(ctx, question, reply); err != nil {
			lg.Error().Err(err).Msg("knowledge save failed")
		}
	}

	related, err := h.Knowledge.Related(ctx, question)
	if err != nil {
		lg.Error().Err(err).Msg("related lookup failed")
		related = nil
	}
	if len(related) > 0 {
		var b strings.Builder
		b.WriteString(reply)
		b.WriteString(relatedHeader)
		for _, q := range related {
			b.WriteString("• " + q + "\n")
		}
		reply = b.String()
	}

	h.send(ctx, lg, chatID, reply)
}

// transcribeVoice downloads the voice note, transcodes it to MP3, and runs
// it through the transcription API. Temp files are removed on return.
func (h *Handler) transcribeVoice(ctx context.Context, fileID string) (string, error) {
	src, err := h.Messenger.VoiceFile(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("download voice: %w", err)
	}
	defer src.Close()

	dir := h.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	base := filepath.Join(dir, "voice-"+uuid.NewString())
	oggPath := base + ".ogg"
	mp3Path := base + ".mp3"
	defer os.Remove(oggPath)
	defer os.Remove(mp3Path)

	ogg, err := os.Create(oggPath)
	if err != nil {
		return "", fmt.Errorf("spool voice: %w", err)
	}
	if _, err := io.Copy(ogg, src); err != nil {
		ogg.Close()
		return "", fmt.Errorf("spool voice: %w", err)
	}
	if err := ogg.Close(); err != nil {
		return "", fmt.Errorf("spool voice: %w", err)
	}

	if err := h.Transcoder.OggToMP3(ctx, oggPath, mp3Path); err != nil {
		return "", err
	}

	mp3, err := os.Open(mp3Path)
	if err != nil {
		return "", fmt.Errorf("open transcoded audio: %w", err)
	}
	defer mp3.Close()

	return h.STT.Transcribe(ctx, mp3)
}

// send delivers a reply, logging (not propagating) delivery failures.
func (h *Handler) send(ctx context.Context, lg zerolog.Logger, chatID int64, text string) {
	if err := h.Messenger.Send(ctx, chatID, text); err != nil {
		lg.Error().Err(err).Msg("send reply failed")
	}
}
