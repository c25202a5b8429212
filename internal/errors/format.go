package errors

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FormatForUser returns a user-friendly error message.
// If debug is true, the underlying cause and details are included.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	fe, ok := asFindError(err)
	if !ok {
		return err.Error()
	}

	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(fe.Message)
	sb.WriteString("\n")

	if debug && fe.Cause != nil {
		sb.WriteString("Cause: ")
		sb.WriteString(fe.Cause.Error())
		sb.WriteString("\n")
	}
	if debug && len(fe.Details) > 0 {
		for _, k := range sortedKeys(fe.Details) {
			fmt.Fprintf(&sb, "  %s: %s\n", k, fe.Details[k])
		}
	}

	if fe.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(fe.Suggestion)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\n[%s]", fe.Code)

	return sb.String()
}

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	fe, ok := asFindError(err)
	if !ok {
		fe = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "Error: %s\n", fe.Message)
	if fe.Cause != nil && fe.Cause.Error() != fe.Message {
		fmt.Fprintf(&sb, "  Cause: %s\n", fe.Cause.Error())
	}
	if fe.Suggestion != "" {
		fmt.Fprintf(&sb, "  Hint: %s\n", fe.Suggestion)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", fe.Code)

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
}

// FormatJSON returns a JSON representation of the error.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	fe, ok := asFindError(err)
	if !ok {
		fe = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       fe.Code,
		Message:    fe.Message,
		Category:   string(fe.Category),
		Severity:   string(fe.Severity),
		Details:    fe.Details,
		Suggestion: fe.Suggestion,
	}
	if fe.Cause != nil {
		je.Cause = fe.Cause.Error()
	}

	return json.Marshal(je)
}

// FormatForLog formats an error for structured logging.
// Returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	fe, ok := asFindError(err)
	if !ok {
		return map[string]any{
			"error": err.Error(),
		}
	}

	result := map[string]any{
		"error_code": fe.Code,
		"message":    fe.Message,
		"category":   string(fe.Category),
		"severity":   string(fe.Severity),
	}
	if fe.Cause != nil {
		result["cause"] = fe.Cause.Error()
	}
	if fe.Suggestion != "" {
		result["suggestion"] = fe.Suggestion
	}
	for k, v := range fe.Details {
		result["detail_"+k] = v
	}

	return result
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
