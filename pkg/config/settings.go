package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Settings carries the per-deployment tunables that are intentionally kept
// out of code: the funnel question script, document verification thresholds
// and keyword lists, content section synonyms and intent keywords.
type Settings struct {
	Questions []QuestionSetting `mapstructure:"questions"`
	Verify    VerifySettings    `mapstructure:"verify"`
	Sections  []SectionSetting  `mapstructure:"sections"`
	Intents   IntentSettings    `mapstructure:"intents"`
}

// QuestionSetting describes one funnel state.
type QuestionSetting struct {
	State        string            `mapstructure:"state"`
	Prompt       string            `mapstructure:"prompt"`
	Pattern      string            `mapstructure:"pattern"`
	ErrorMessage string            `mapstructure:"error"`
	Field        string            `mapstructure:"field"`
	Next         string            `mapstructure:"next"`
	AllowSkip    bool              `mapstructure:"allow-skip"`
	SkipTo       string            `mapstructure:"skip-to"`
	NextOn       map[string]string `mapstructure:"next-on"`
	Capture      bool              `mapstructure:"capture"`
}

type VerifySettings struct {
	MaxBytes      int64               `mapstructure:"max-bytes"`
	BlurThreshold float64             `mapstructure:"blur-threshold"`
	SegModes      []int               `mapstructure:"seg-modes"`
	MaxRetries    int                 `mapstructure:"max-retries"`
	DocumentTypes map[string][]string `mapstructure:"document-types"`
}

type SectionSetting struct {
	Name     string   `mapstructure:"name"`
	Synonyms []string `mapstructure:"synonyms"`
}

type IntentSettings struct {
	JobKeywords     []string `mapstructure:"job-keywords"`
	CompanyKeywords []string `mapstructure:"company-keywords"`
}

// LoadSettings reads the YAML settings file. A missing file is not an error:
// the compiled-in defaults are returned so the service can run unconfigured.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}

	// ZeroFields makes a configured section replace its default wholesale;
	// without it the question list would merge element-wise with the
	// compiled-in script.
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ZeroFields:       true,
	})
	if err != nil {
		return s, err
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return s, fmt.Errorf("decode settings %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return s, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if len(s.Questions) == 0 {
		return fmt.Errorf("settings: at least one funnel question is required")
	}
	seen := make(map[string]bool, len(s.Questions))
	for _, q := range s.Questions {
		if q.State == "" {
			return fmt.Errorf("settings: question with empty state id")
		}
		if seen[q.State] {
			return fmt.Errorf("settings: duplicate question state %q", q.State)
		}
		seen[q.State] = true
	}
	for _, q := range s.Questions {
		for _, next := range []string{q.Next, q.SkipTo} {
			if next != "" && next != "end" && !seen[next] {
				return fmt.Errorf("settings: state %q points to unknown state %q", q.State, next)
			}
		}
		for _, next := range q.NextOn {
			if next != "" && next != "end" && !seen[next] {
				return fmt.Errorf("settings: state %q branches to unknown state %q", q.State, next)
			}
		}
	}
	if s.Verify.BlurThreshold <= 0 {
		return fmt.Errorf("settings: verify.blur-threshold must be positive")
	}
	if len(s.Verify.SegModes) == 0 {
		return fmt.Errorf("settings: verify.seg-modes must not be empty")
	}
	return nil
}
