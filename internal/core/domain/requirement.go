package domain

import (
	"strings"
	"time"
	"unicode"
)

// ProjectType classifies what the user wants built.
type ProjectType string

// Available project types. The zero value means the type is not yet known.
const (
	ProjectTypeUnknown   ProjectType = ""
	ProjectTypeWebsite   ProjectType = "website"
	ProjectTypeParser    ProjectType = "parser"
	ProjectTypeBot       ProjectType = "bot"
	ProjectTypeScript    ProjectType = "script"
	ProjectTypeAnimation ProjectType = "animation"
)

// IsValid returns true if the project type is a recognised, known type.
func (t ProjectType) IsValid() bool {
	switch t {
	case ProjectTypeWebsite, ProjectTypeParser, ProjectTypeBot, ProjectTypeScript, ProjectTypeAnimation:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ProjectType) String() string {
	if t == ProjectTypeUnknown {
		return "unknown"
	}
	return string(t)
}

// Description returns a human-readable description of the type.
func (t ProjectType) Description() string {
	switch t {
	case ProjectTypeWebsite:
		return "Website with animation"
	case ProjectTypeParser:
		return "Data parser"
	case ProjectTypeBot:
		return "Chat bot"
	case ProjectTypeScript:
		return "Utility script"
	case ProjectTypeAnimation:
		return "Interactive animation"
	default:
		return "Unknown"
	}
}

// Style is the visual style of the artifact.
type Style string

// Available styles.
const (
	StyleAbstract   Style = "abstract"
	StyleGeometric  Style = "geometric"
	StyleOrganic    Style = "organic"
	StyleMinimal    Style = "minimal"
	StyleFuturistic Style = "futuristic"
	StyleDark       Style = "dark"
)

// DefaultStyle is the style assumed until the user states one.
const DefaultStyle = StyleAbstract

// IsValid returns true if the style is recognised.
func (s Style) IsValid() bool {
	switch s {
	case StyleAbstract, StyleGeometric, StyleOrganic, StyleMinimal, StyleFuturistic, StyleDark:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Style) String() string {
	return string(s)
}

// Mood is the overall tone of the artifact.
type Mood string

// Available moods.
const (
	MoodDark       Mood = "dark"
	MoodLight      Mood = "light"
	MoodMysterious Mood = "mysterious"
)

// DefaultMood is the mood assumed until the user states one.
const DefaultMood = MoodDark

// IsValid returns true if the mood is recognised.
func (m Mood) IsValid() bool {
	switch m {
	case MoodDark, MoodLight, MoodMysterious:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Mood) String() string {
	return string(m)
}

// AnimationSpeed is how fast animated elements move.
type AnimationSpeed string

// Available animation speeds.
const (
	AnimationSlow   AnimationSpeed = "slow"
	AnimationMedium AnimationSpeed = "medium"
	AnimationFast   AnimationSpeed = "fast"
)

// DefaultAnimationSpeed is the speed assumed until the user states one.
const DefaultAnimationSpeed = AnimationMedium

// IsValid returns true if the speed is recognised.
func (s AnimationSpeed) IsValid() bool {
	switch s {
	case AnimationSlow, AnimationMedium, AnimationFast:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s AnimationSpeed) String() string {
	return string(s)
}

// RequirementProfile is the accumulating specification of what the user wants.
// Set-valued fields keep insertion order and never hold duplicates.
// It is mutated only through Merge and SetInitialTask.
type RequirementProfile struct {
	// InitialTask is the first request text. Write-once.
	InitialTask string `json:"initial_task"`

	// ProjectType is unset until an extraction supplies it.
	ProjectType ProjectType `json:"project_type"`

	// Technologies the user asked for.
	Technologies []string `json:"technologies"`

	// Forbidden lists things the user does not want.
	Forbidden []string `json:"forbidden"`

	// Colors the user mentioned.
	Colors []string `json:"colors"`

	// Style defaults to abstract.
	Style Style `json:"style"`

	// Mood defaults to dark.
	Mood Mood `json:"mood"`

	// AnimationSpeed defaults to medium.
	AnimationSpeed AnimationSpeed `json:"animation_speed"`

	// AnimationSpeedSet records that the speed came from the user rather
	// than the default.
	AnimationSpeedSet bool `json:"animation_speed_set"`

	// Features are specific requested behaviours or effects.
	Features []string `json:"features"`

	// Examples are references the user supplied, in order.
	Examples []string `json:"examples"`

	// References are links or named works, in order.
	References []string `json:"references"`

	// CreatedAt is when the profile was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the profile was last merged into.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRequirementProfile returns an empty profile with defaults applied.
func NewRequirementProfile() *RequirementProfile {
	now := time.Now()
	p := &RequirementProfile{
		Style:          DefaultStyle,
		Mood:           DefaultMood,
		AnimationSpeed: DefaultAnimationSpeed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	p.Normalise()
	return p
}

// Normalise fills missing defaults and replaces nil sets with empty ones.
// Used after decoding a profile from storage.
func (p *RequirementProfile) Normalise() {
	if !p.Style.IsValid() {
		p.Style = DefaultStyle
	}
	if !p.Mood.IsValid() {
		p.Mood = DefaultMood
	}
	if !p.AnimationSpeed.IsValid() {
		p.AnimationSpeed = DefaultAnimationSpeed
	}
	if !p.ProjectType.IsValid() {
		p.ProjectType = ProjectTypeUnknown
	}
	p.Technologies = appendUnique(nonNil(p.Technologies))
	p.Forbidden = appendUnique(nonNil(p.Forbidden))
	p.Colors = appendUnique(nonNil(p.Colors))
	p.Features = appendUnique(nonNil(p.Features))
	p.Examples = appendUnique(nonNil(p.Examples))
	p.References = appendUnique(nonNil(p.References))
}

// SetInitialTask records the first request. Setting the same value again
// is a no-op; setting a different value returns ErrWriteOnce.
func (p *RequirementProfile) SetInitialTask(task string) error {
	task = strings.TrimSpace(task)
	if p.InitialTask == "" {
		p.InitialTask = task
		return nil
	}
	if p.InitialTask != task {
		return ErrWriteOnce
	}
	return nil
}

// Merge folds an extraction into the profile. Sets are unioned; scalars
// are overwritten only when the extraction supplies a valid value.
func (p *RequirementProfile) Merge(e Extraction) {
	p.Normalise()

	if t := ProjectType(normaliseScalar(e.ProjectType)); t.IsValid() {
		p.ProjectType = t
	}
	if s := Style(normaliseScalar(e.Style)); s.IsValid() {
		p.Style = s
	}
	if m := Mood(normaliseScalar(e.Mood)); m.IsValid() {
		p.Mood = m
	}
	if s := AnimationSpeed(normaliseScalar(e.AnimationSpeed)); s.IsValid() {
		p.AnimationSpeed = s
		p.AnimationSpeedSet = true
	}

	p.Technologies = appendUnique(p.Technologies, e.Technologies...)
	p.Forbidden = appendUnique(p.Forbidden, e.Forbidden...)
	p.Colors = appendUnique(p.Colors, e.Colors...)
	p.Features = appendUnique(p.Features, e.Features...)
	p.Examples = appendUnique(p.Examples, e.Examples...)
	p.References = appendUnique(p.References, e.References...)

	p.UpdatedAt = time.Now()
}

// Confidence scores how complete the profile is, from 0 to 100.
// It is derived from the current field values on every call.
func (p *RequirementProfile) Confidence() float64 {
	score, total := 0, 0

	total += 20
	if p.ProjectType.IsValid() {
		score += 20
	}

	total += 20
	if len(p.Colors) > 0 {
		score += 20
	}

	total += 15
	if len(p.Technologies) > 0 {
		score += 15
	}

	total += 15
	switch {
	case len(p.Features) >= 2:
		score += 15
	case len(p.Features) == 1:
		score += 7
	}

	total += 10
	if p.Style != DefaultStyle {
		score += 10
	}

	// The default speed scores higher: it means no further answer is needed.
	total += 10
	if p.AnimationSpeed != DefaultAnimationSpeed {
		score += 5
	} else {
		score += 10
	}

	total += 5
	if len(p.Forbidden) > 0 {
		score += 5
	}

	total += 5
	if len(p.Examples) > 0 {
		score += 5
	}

	return 100 * float64(score) / float64(total)
}

// MissingFields lists the categories still worth asking about.
func (p *RequirementProfile) MissingFields() []string {
	var missing []string
	if !p.ProjectType.IsValid() {
		missing = append(missing, "project type")
	}
	if len(p.Colors) == 0 {
		missing = append(missing, "colors")
	}
	if len(p.Technologies) == 0 {
		missing = append(missing, "technologies")
	}
	if len(p.Features) < 2 {
		missing = append(missing, "key features")
	}
	return missing
}

// ProjectName derives a filesystem-friendly name such as "Site_Minimal_Black_glow".
func (p *RequirementProfile) ProjectName() string {
	prefixes := map[ProjectType]string{
		ProjectTypeWebsite:   "Site",
		ProjectTypeParser:    "Parser",
		ProjectTypeBot:       "Bot",
		ProjectTypeScript:    "Script",
		ProjectTypeAnimation: "Anim",
	}
	prefix, ok := prefixes[p.ProjectType]
	if !ok {
		prefix = "Project"
	}
	parts := []string{prefix}

	if p.Style != DefaultStyle && p.Style != "" {
		parts = append(parts, capitalise(string(p.Style)))
	}
	if len(p.Colors) > 0 {
		parts = append(parts, capitalise(p.Colors[0]))
	}
	if len(p.Features) > 0 {
		feature := []rune(strings.ReplaceAll(p.Features[0], " ", "_"))
		if len(feature) > 15 {
			feature = feature[:15]
		}
		parts = append(parts, string(feature))
	}

	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, strings.Join(parts, "_"))
}

// Clone returns a deep copy.
func (p *RequirementProfile) Clone() *RequirementProfile {
	c := *p
	c.Technologies = append([]string{}, p.Technologies...)
	c.Forbidden = append([]string{}, p.Forbidden...)
	c.Colors = append([]string{}, p.Colors...)
	c.Features = append([]string{}, p.Features...)
	c.Examples = append([]string{}, p.Examples...)
	c.References = append([]string{}, p.References...)
	return &c
}

func appendUnique(dst []string, items ...string) []string {
	seen := make(map[string]struct{}, len(dst)+len(items))
	out := make([]string, 0, len(dst)+len(items))
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range dst {
		add(s)
	}
	for _, s := range items {
		add(s)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func normaliseScalar(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func capitalise(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
