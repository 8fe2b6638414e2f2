package converter

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/nihasbabu/gst-modules/internal/config"
)

// Job is one workbook to produce: a profile, a return kind and its inputs.
type Job struct {
	Profile *config.Profile
	Kind    config.Kind

	// Files are the inputs. For GSTR-1 these are the small-tier exports.
	Files []string

	// Large are large-tier GSTR-1 B2B downloads.
	Large []string

	// Branch overrides the profile branch for sales registers.
	Branch string
}

// Inputs returns every input path of the job.
func (j Job) Inputs() []string {
	return append(append([]string(nil), j.Files...), j.Large...)
}

func (j Job) less(o Job) bool {
	if j.Profile.GSTIN != o.Profile.GSTIN {
		return j.Profile.GSTIN < o.Profile.GSTIN
	}
	return kindIndex(j.Kind) < kindIndex(o.Kind)
}

func kindIndex(k config.Kind) int {
	for i, kind := range config.Kinds {
		if kind == k {
			return i
		}
	}
	return len(config.Kinds)
}

// Plan assigns files to profiles and groups them into jobs.
//
// MATCHING LOGIC:
//   1. A file inside a directory named after a profile's GSTIN or name
//      belongs to that profile.
//   2. Otherwise the first profile, by GSTIN, whose patterns match it.
//
// RETURNS:
//   - The jobs, ordered by profile then kind. Kinds with no files get no job.
//   - The files no profile claimed.
func Plan(files []string, profiles map[string]*config.Profile) ([]Job, []string) {
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	type jobKey struct {
		gstin string
		kind  config.Kind
	}
	jobs := make(map[jobKey]*Job)
	var unmatched []string

	for _, file := range files {
		profile, class, ok := match(file, keys, profiles)
		if !ok {
			unmatched = append(unmatched, file)
			continue
		}
		k := jobKey{profile.GSTIN, class.Kind}
		job, exists := jobs[k]
		if !exists {
			job = &Job{Profile: profile, Kind: class.Kind}
			jobs[k] = job
		}
		if class.Large {
			job.Large = append(job.Large, file)
		} else {
			job.Files = append(job.Files, file)
		}
	}

	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out, unmatched
}

func match(file string, keys []string, profiles map[string]*config.Profile) (*config.Profile, config.Class, bool) {
	dirs := strings.Split(filepath.ToSlash(filepath.Dir(file)), "/")
	for _, k := range keys {
		p := profiles[k]
		for _, d := range dirs {
			if d != "" && (strings.EqualFold(d, p.GSTIN) || (p.Name != "" && strings.EqualFold(d, p.Name))) {
				class, ok := p.Classify(file)
				return p, class, ok
			}
		}
	}
	for _, k := range keys {
		if class, ok := profiles[k].Classify(file); ok {
			return profiles[k], class, true
		}
	}
	return nil, config.Class{}, false
}

// Only keeps the jobs of one kind.
func Only(jobs []Job, kind config.Kind) []Job {
	var out []Job
	for _, j := range jobs {
		if j.Kind == kind {
			out = append(out, j)
		}
	}
	return out
}
