package health

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/TwiN/deepmerge"
	"gopkg.in/yaml.v3"
)

// Profile is the configuration every evaluation runs against. It replaces
// literal defaults at call sites: callers pass a profile explicitly.
type Profile struct {
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`
	Goals      Goals      `json:"goals" yaml:"goals"`
}

var mergeConfig = deepmerge.Config{PreventMultipleDefinitionsOfKeysWithPrimitiveValue: false}

// ErrNullOverride is returned for overrides that set a key to null. A null
// would zero the cutoffs instead of keeping the current ones.
var ErrNullOverride = errors.New("override values cannot be null")

func DefaultProfile() Profile {
	return Profile{
		Thresholds: DefaultThresholds(),
		Goals:      DefaultGoals(),
	}
}

// NewProfile fails fast on malformed thresholds or goals.
func NewProfile(thresholds Thresholds, goals Goals) (Profile, error) {
	p := Profile{Thresholds: thresholds, Goals: goals}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) Validate() error {
	return errors.Join(p.Thresholds.Validate(), p.Goals.Validate())
}

// MergeYAML overlays a partial YAML document on top of the profile.
func (p Profile) MergeYAML(doc []byte) (Profile, error) {
	var overrides any
	if err := yaml.Unmarshal(doc, &overrides); err != nil {
		return Profile{}, fmt.Errorf("unable to parse profile: %w", err)
	}
	if err := rejectNulls("", overrides); err != nil {
		return Profile{}, err
	}

	base, err := yaml.Marshal(p)
	if err != nil {
		return Profile{}, fmt.Errorf("unable to marshal profile: %w", err)
	}
	merged, err := deepmerge.YAML(base, doc, mergeConfig)
	if err != nil {
		return Profile{}, fmt.Errorf("unable to merge profile: %w", err)
	}

	var result Profile
	dec := yaml.NewDecoder(bytes.NewReader(merged))
	dec.KnownFields(true)
	if err := dec.Decode(&result); err != nil {
		return Profile{}, fmt.Errorf("unable to decode merged profile: %w", err)
	}
	if err := result.Validate(); err != nil {
		return Profile{}, err
	}
	return result, nil
}

// MergeJSON overlays a partial JSON document on top of the profile.
func (p Profile) MergeJSON(doc []byte) (Profile, error) {
	result, err := mergeJSON(p, doc)
	if err != nil {
		return Profile{}, err
	}
	if err := result.Validate(); err != nil {
		return Profile{}, err
	}
	return result, nil
}

func MergeThresholdsJSON(base Thresholds, doc []byte) (Thresholds, error) {
	result, err := mergeJSON(base, doc)
	if err != nil {
		return Thresholds{}, err
	}
	if err := result.Validate(); err != nil {
		return Thresholds{}, err
	}
	return result, nil
}

func MergeGoalsJSON(base Goals, doc []byte) (Goals, error) {
	result, err := mergeJSON(base, doc)
	if err != nil {
		return Goals{}, err
	}
	if err := result.Validate(); err != nil {
		return Goals{}, err
	}
	return result, nil
}

func mergeJSON[T any](base T, doc []byte) (T, error) {
	var result T
	var overrides any
	if err := json.Unmarshal(doc, &overrides); err != nil {
		return result, fmt.Errorf("unable to parse document: %w", err)
	}
	if err := rejectNulls("", overrides); err != nil {
		return result, err
	}

	src, err := json.Marshal(base)
	if err != nil {
		return result, fmt.Errorf("unable to marshal base document: %w", err)
	}
	merged, err := deepmerge.JSON(src, doc, mergeConfig)
	if err != nil {
		return result, fmt.Errorf("unable to merge document: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(merged))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&result); err != nil {
		return result, fmt.Errorf("unable to decode merged document: %w", err)
	}
	return result, nil
}

func rejectNulls(path string, value any) error {
	switch v := value.(type) {
	case map[string]any:
		for _, key := range slices.Sorted(maps.Keys(v)) {
			child := key
			if path != "" {
				child = path + "." + key
			}
			if v[key] == nil {
				return fmt.Errorf("%w: %s", ErrNullOverride, child)
			}
			if err := rejectNulls(child, v[key]); err != nil {
				return err
			}
		}
	case []any:
		for i, item := range v {
			child := fmt.Sprintf("%s[%d]", path, i)
			if item == nil {
				return fmt.Errorf("%w: %s", ErrNullOverride, child)
			}
			if err := rejectNulls(child, item); err != nil {
				return err
			}
		}
	}
	return nil
}
