package planner

import (
	"strings"
	"unicode"
)

// StudyLevel is a coarse classification of the program text. It only biases
// query ordering, so LevelUnknown is always safe.
type StudyLevel int

const (
	LevelUnknown StudyLevel = iota
	LevelUndergraduate
	LevelPostgraduate
	LevelResearch
)

func (l StudyLevel) String() string {
	switch l {
	case LevelUndergraduate:
		return "undergraduate"
	case LevelPostgraduate:
		return "postgraduate"
	case LevelResearch:
		return "research"
	}
	return "unknown"
}

func (l StudyLevel) qualifier() string {
	switch l {
	case LevelUndergraduate:
		return "bachelor"
	case LevelPostgraduate, LevelResearch:
		return "master"
	}
	return ""
}

var (
	researchWords      = []string{"phd", "doctor", "doctorate", "dphil", "mphil", "research"}
	postgraduateWords  = []string{"master", "masters", "msc", "mba", "meng", "mres", "postgraduate", "graduate"}
	undergraduateWords = []string{"bachelor", "bachelors", "undergraduate", "bsc", "ba", "beng", "honours", "associate"}
)

// ClassifyLevel derives a StudyLevel from keywords in the program name.
// Research wins over postgraduate, which wins over undergraduate.
func ClassifyLevel(program string) StudyLevel {
	words := map[string]struct{}{}
	for _, w := range strings.FieldsFunc(lower(program), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		words[w] = struct{}{}
	}
	has := func(list []string) bool {
		for _, w := range list {
			if _, ok := words[w]; ok {
				return true
			}
		}
		return false
	}
	switch {
	case has(researchWords):
		return LevelResearch
	case has(postgraduateWords):
		return LevelPostgraduate
	case has(undergraduateWords):
		return LevelUndergraduate
	}
	return LevelUnknown
}
