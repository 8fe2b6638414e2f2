package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// RETURN KINDS
// =============================================================================

// Kind is the type of return a run produces a workbook for.
type Kind string

const (
	KindGSTR1  Kind = "gstr1"
	KindGSTR2B Kind = "gstr2b"
	KindGSTR3B Kind = "gstr3b"
	KindSales  Kind = "sales"
)

// Kinds lists every kind in processing order.
var Kinds = []Kind{KindGSTR1, KindGSTR2B, KindGSTR3B, KindSales}

// =============================================================================
// PROFILE STRUCTURE
// =============================================================================

// Profile holds the settings of one taxpayer. Each profile is a YAML file in
// the profiles directory.
type Profile struct {
	// Name is the human-readable name used in logs.
	Name string `yaml:"name"`

	// GSTIN identifies the taxpayer and keys the profile.
	GSTIN string `yaml:"gstin"`

	// Branch tags every sales register row read for this profile.
	Branch string `yaml:"branch"`

	// Patterns match input file names to return kinds.
	Patterns Patterns `yaml:"patterns"`

	// Exclusions lists, per period code (MMYYYY), the GSTR-1 section tags
	// declared not applicable.
	//
	// Example:
	//   exclusions:
	//     "042024": [B2CL, EXP]
	Exclusions map[string][]string `yaml:"exclusions"`

	// IgnoreWarnings overrides the main setting when present.
	IgnoreWarnings *bool `yaml:"ignore_warnings,omitempty"`

	// TemplatePath overrides the main setting when not empty.
	TemplatePath string `yaml:"template_path,omitempty"`
}

// Patterns are glob patterns matched against input file base names. The
// first kind whose patterns match wins, in field order.
type Patterns struct {
	GSTR1Small []string `yaml:"gstr1_small"`
	GSTR1Large []string `yaml:"gstr1_large"`
	GSTR2B     []string `yaml:"gstr2b"`
	GSTR3B     []string `yaml:"gstr3b"`
	Sales      []string `yaml:"sales"`
}

// DefaultPatterns are used for any kind a profile leaves empty.
var DefaultPatterns = Patterns{
	GSTR1Small: []string{"GSTR1_*.json", "GSTR1_*.zip"},
	GSTR1Large: []string{"*_B2B*.zip", "*_B2B*.json", "B2B*.zip"},
	GSTR2B:     []string{"*GSTR2B*.json", "*GSTR2B*.zip", "*R2B*.json", "*R2B*.zip"},
	GSTR3B:     []string{"*GSTR3B*.json", "*GSTR3B*.zip", "*R3B*.json", "*R3B*.zip"},
	Sales:      []string{"*.xlsx"},
}

// Class is what a file was classified as.
type Class struct {
	Kind Kind

	// Large marks a large-tier GSTR-1 download.
	Large bool
}

// Classify matches a file name against the profile's patterns.
//
// RETURNS:
//   - The class of the file.
//   - false if no pattern matches.
func (p *Profile) Classify(path string) (Class, bool) {
	name := filepath.Base(path)
	order := []struct {
		class    Class
		patterns []string
	}{
		{Class{Kind: KindGSTR1}, p.Patterns.GSTR1Small},
		{Class{Kind: KindGSTR1, Large: true}, p.Patterns.GSTR1Large},
		{Class{Kind: KindGSTR2B}, p.Patterns.GSTR2B},
		{Class{Kind: KindGSTR3B}, p.Patterns.GSTR3B},
		{Class{Kind: KindSales}, p.Patterns.Sales},
	}
	for _, o := range order {
		for _, pattern := range o.patterns {
			// Invalid patterns never match.
			if ok, err := filepath.Match(pattern, name); err == nil && ok {
				return o.class, true
			}
		}
	}
	return Class{}, false
}

// Label is the name used in logs and output file names.
func (p *Profile) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.GSTIN
}

// =============================================================================
// PROFILE LOADING
// =============================================================================

// LoadProfiles loads all profiles from a directory.
//
// PARAMETERS:
//   - profilesDir: The directory holding the profile files.
//
// RETURNS:
//   - The profiles keyed by GSTIN, or by file base name when a profile has
//     no GSTIN.
//   - An error if a file cannot be read or parsed, or two files claim the
//     same GSTIN.
func LoadProfiles(profilesDir string) (map[string]*Profile, error) {
	profiles := make(map[string]*Profile)

	files, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(profilesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	for _, file := range files {
		profile, err := loadProfile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		key := profile.GSTIN
		if key == "" {
			key = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			profile.GSTIN = key
		}
		if _, dup := profiles[key]; dup {
			return nil, fmt.Errorf("duplicate profile for %s in %s", key, file)
		}
		profiles[key] = profile
	}

	return profiles, nil
}

func loadProfile(filePath string) (*Profile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	applyProfileDefaults(&profile)
	return &profile, nil
}

func applyProfileDefaults(p *Profile) {
	fill := func(dst *[]string, def []string) {
		if len(*dst) == 0 {
			*dst = append([]string(nil), def...)
		}
	}
	fill(&p.Patterns.GSTR1Small, DefaultPatterns.GSTR1Small)
	fill(&p.Patterns.GSTR1Large, DefaultPatterns.GSTR1Large)
	fill(&p.Patterns.GSTR2B, DefaultPatterns.GSTR2B)
	fill(&p.Patterns.GSTR3B, DefaultPatterns.GSTR3B)
	fill(&p.Patterns.Sales, DefaultPatterns.Sales)
}

// DefaultProfile is used when the profiles directory is empty.
func DefaultProfile() *Profile {
	p := &Profile{Name: "default", GSTIN: "default"}
	applyProfileDefaults(p)
	return p
}

// =============================================================================
// EFFECTIVE SETTINGS
// =============================================================================

// Settings are the values one run uses once the profile overrides have been
// applied to the main config.
type Settings struct {
	Profile        *Profile
	IgnoreWarnings bool
	TemplatePath   string
	LenientJSON    bool
}

// Resolve returns the settings of a run for profile. The profile is deep
// copied so nothing the run changes reaches the loaded set.
func Resolve(main *MainConfig, profile *Profile) (*Settings, error) {
	var copied Profile
	if err := deepcopy.Copy(&copied, profile); err != nil {
		return nil, fmt.Errorf("failed to copy profile %s: %w", profile.Label(), err)
	}

	s := &Settings{
		Profile:        &copied,
		IgnoreWarnings: main.IgnoreWarnings,
		TemplatePath:   main.TemplatePath,
		LenientJSON:    main.LenientJSON,
	}
	if copied.IgnoreWarnings != nil {
		s.IgnoreWarnings = *copied.IgnoreWarnings
	}
	if copied.TemplatePath != "" {
		s.TemplatePath = copied.TemplatePath
	}
	if copied.Exclusions == nil {
		copied.Exclusions = make(map[string][]string)
	}
	return s, nil
}
