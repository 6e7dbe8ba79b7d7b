package constants

import (
	"strings"
)

// Category is the canonical equipment category shared by normalized specs and the catalog.
type Category string

const (
	Camera        Category = "camera"
	NVR           Category = "nvr"
	Switch        Category = "switch"
	Storage       Category = "storage"
	AccessControl Category = "access_control"
	Monitor       Category = "monitor"
	Other         Category = "other"
)

var allCategories = []Category{
	Camera,
	NVR,
	Switch,
	Storage,
	AccessControl,
	Monitor,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Category{
		"câmera":                 Camera,
		"camera ip":              Camera,
		"câmera ip":              Camera,
		"cameras":                Camera,
		"gravador":               NVR,
		"gravador de vídeo":      NVR,
		"network video recorder": NVR,
		"dvr":                    NVR,
		"switch poe":             Switch,
		"comutador":              Switch,
		"hd":                     Storage,
		"disco rígido":           Storage,
		"hdd":                    Storage,
		"armazenamento":          Storage,
		"controle de acesso":     AccessControl,
		"monitor de vídeo":       Monitor,
		"tela":                   Monitor,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return Other, false
}
