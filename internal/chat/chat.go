// Package chat answers free-form questions about the ingested payroll data.
// Every question is grounded on a JSON snapshot of the current facts injected
// into the system prompt; the assistant is told to refuse questions the data
// cannot answer rather than guess.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nominalab/labor-costs/internal/entity"
	"github.com/nominalab/labor-costs/internal/llm"
)

// ViewProvider yields the current data snapshot handed to the model.
type ViewProvider interface {
	WorkersView(ctx context.Context) (*entity.WorkersView, error)
}

// Message is one turn of a conversation. The transcript belongs to the
// caller; the assistant is stateless between calls.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

type Assistant struct {
	completer llm.Completer
	views     ViewProvider
	logger    *slog.Logger
}

func NewAssistant(completer llm.Completer, views ViewProvider, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{completer: completer, views: views, logger: logger}
}

const systemTemplate = "Eres un asesor laboral español. Responde SIEMPRE en español, " +
	"de forma breve y profesional. Basa tus respuestas EXCLUSIVAMENTE en los datos JSON " +
	"siguientes, que contienen los trabajadores registrados, sus bases de contingencias " +
	"comunes por período y el coste por hora calculado por trabajador y ejercicio. " +
	"Si la pregunta no puede responderse con estos datos, dilo claramente en lugar de inventar. " +
	"Para trabajadores con campos \"missing\" indica qué documentos faltan.\n\nDatos:\n%s"

// Ask answers one question given the prior transcript. The snapshot is
// rebuilt on every call so answers always reflect the latest ingested facts.
func (a *Assistant) Ask(ctx context.Context, history []Message, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("empty question")
	}

	view, err := a.views.WorkersView(ctx)
	if err != nil {
		return "", fmt.Errorf("build data snapshot: %w", err)
	}
	snapshot, err := json.Marshal(view)
	if err != nil {
		return "", fmt.Errorf("encode data snapshot: %w", err)
	}

	reply, err := a.completer.Complete(ctx,
		fmt.Sprintf(systemTemplate, snapshot),
		renderPrompt(history, question))
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	a.logger.Info("chat.answered", "question_len", len(question), "history_turns", len(history))
	return strings.TrimSpace(reply), nil
}

// renderPrompt flattens the transcript ahead of the new question so the
// completion seam stays a single (system, user) pair.
func renderPrompt(history []Message, question string) string {
	if len(history) == 0 {
		return question
	}
	var b strings.Builder
	b.WriteString("Conversación previa:\n")
	for _, m := range history {
		role := "Usuario"
		if m.Role == "assistant" {
			role = "Asesor"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nNueva pregunta: ")
	b.WriteString(question)
	return b.String()
}
