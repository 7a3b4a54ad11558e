package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// quartoProject is the subset of _quarto.yml used for name detection.
type quartoProject struct {
	Project struct {
		Title string `yaml:"title"`
	} `yaml:"project"`
	Website struct {
		Title string `yaml:"title"`
	} `yaml:"website"`
	Book struct {
		Title string `yaml:"title"`
	} `yaml:"book"`
}

// DetectProjectName infers the project name from _quarto.yml in dir,
// preferring website.title, then book.title, then project.title. Falls back
// to the directory base name. Errors reading the manifest are ignored.
func DetectProjectName(dir string) string {
	if name := detectFromQuarto(dir); name != "" {
		return name
	}
	return filepath.Base(dir)
}

func detectFromQuarto(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "_quarto.yml"))
	if err != nil {
		return ""
	}
	var q quartoProject
	if err := yaml.Unmarshal(data, &q); err != nil {
		return ""
	}
	switch {
	case q.Website.Title != "":
		return q.Website.Title
	case q.Book.Title != "":
		return q.Book.Title
	default:
		return q.Project.Title
	}
}
