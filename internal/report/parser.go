package report

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/vivabem/vivabem-server/internal/metrics"
)

// StructuredReport is the decoded daily wellness report
type StructuredReport struct {
	OverallAssessment     string            `json:"overall_assessment"`
	HealthMetricsAnalysis map[string]string `json:"health_metrics_analysis,omitempty"`
	MedicationAdherence   string            `json:"medication_adherence,omitempty"`
	ActivityEvaluation    string            `json:"activity_evaluation,omitempty"`
	NutritionAnalysis     string            `json:"nutrition_analysis,omitempty"`
	CognitiveInsights     string            `json:"cognitive_insights,omitempty"`
	Recommendations       []string          `json:"recommendations,omitempty"`
	MotivationalMessage   string            `json:"motivational_message,omitempty"`
	GeneratedAt           time.Time         `json:"generated_at"`
}

var codeFence = regexp.MustCompile("```(?:json)?\\s*")

// ParseStructuredReport decodes the model's reply into a StructuredReport.
// Markdown code fences are stripped first. When the reply is not valid JSON
// the raw text is preserved as the overall assessment; parsing never fails.
func ParseStructuredReport(raw string) *StructuredReport {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		metrics.ParseFallbacks.Inc()
		return &StructuredReport{
			OverallAssessment: raw,
			GeneratedAt:       time.Now(),
		}
	}

	return &StructuredReport{
		OverallAssessment:     coerceText(fields["overall_assessment"]),
		HealthMetricsAnalysis: coerceTextMap(fields["health_metrics_analysis"]),
		MedicationAdherence:   coerceText(fields["medication_adherence"]),
		ActivityEvaluation:    coerceText(fields["activity_evaluation"]),
		NutritionAnalysis:     coerceText(fields["nutrition_analysis"]),
		CognitiveInsights:     coerceText(fields["cognitive_insights"]),
		Recommendations:       coerceList(fields["recommendations"]),
		MotivationalMessage:   coerceText(fields["motivational_message"]),
		GeneratedAt:           time.Now(),
	}
}

// coerceText turns any JSON value into display text: strings are unwrapped,
// everything else keeps its compact JSON form.
func coerceText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// coerceTextMap decodes a key→text object, coercing each value. A value that
// is not an object collapses to a single "geral" entry so nothing is dropped.
func coerceTextMap(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		if text := coerceText(raw); text != "" {
			return map[string]string{"geral": text}
		}
		return nil
	}

	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = coerceText(v)
	}
	return out
}

// coerceList applies coerceText to each array element. The model sometimes
// mixes strings and objects in recommendations; both survive.
func coerceList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Not an array; keep the whole value as one entry
		if text := coerceText(raw); text != "" {
			return []string{text}
		}
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if text := coerceText(item); text != "" {
			out = append(out, text)
		}
	}
	return out
}
