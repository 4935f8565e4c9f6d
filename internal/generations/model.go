package generations

import "time"

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	QualityStandard = "standard"
	QualityHigh     = "high"
	QualityUltra    = "ultra"
)

// StyleParameters are optional modifiers applied to a generation request.
// Every field is optional; zero dimensions mean "use system defaults".
type StyleParameters struct {
	Style       string   `json:"style,omitempty"`
	ColorScheme string   `json:"colorScheme,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	Modifiers   []string `json:"modifiers,omitempty"`
	Width       int      `json:"width,omitempty"`
	Height      int      `json:"height,omitempty"`
	Quality     string   `json:"quality,omitempty"`
}

// IsZero reports whether no style field is set.
func (p *StyleParameters) IsZero() bool {
	if p == nil {
		return true
	}
	return p.Style == "" && p.ColorScheme == "" && p.Mood == "" &&
		len(p.Modifiers) == 0 && p.Width == 0 && p.Height == 0 && p.Quality == ""
}

// ValidQuality reports whether q names a known quality tier.
func ValidQuality(q string) bool {
	switch q {
	case "", QualityStandard, QualityHigh, QualityUltra:
		return true
	default:
		return false
	}
}

// Generation is the provenance record of one generation attempt. It is
// written exactly once with a terminal status and never mutated.
type Generation struct {
	ID                string           `json:"id"`
	UserID            string           `json:"userId"`
	Prompt            string           `json:"prompt"`
	Style             *StyleParameters `json:"styleParameters,omitempty"`
	Status            string           `json:"status"`
	ArtifactURL       string           `json:"artifactUrl,omitempty"`
	ArtifactSizeBytes int64            `json:"artifactSizeBytes,omitempty"`
	MimeType          string           `json:"mimeType,omitempty"`
	Width             int              `json:"width,omitempty"`
	Height            int              `json:"height,omitempty"`
	ErrorSummary      *string          `json:"errorSummary,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}
