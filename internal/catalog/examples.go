package catalog

import "github.com/freelancer-ai/analysis-api/internal/model"

// ExampleProject é um exemplo de zadání exibido ao usuário
type ExampleProject struct {
	ID          string            `yaml:"id" json:"id"`
	ProjectType model.ProjectType `yaml:"projectType" json:"projectType"`
	Title       string            `yaml:"title" json:"title"`
	Description string            `yaml:"description" json:"description"`
	Prompt      string            `yaml:"prompt" json:"prompt"`
	Categories  []string          `yaml:"categories" json:"categories"`
	Budget      string            `yaml:"budget" json:"budget"`
	Highlights  []string          `yaml:"highlights" json:"highlights"`
}

func (e ExampleProject) clone() ExampleProject {
	e.Categories = append([]string(nil), e.Categories...)
	e.Highlights = append([]string(nil), e.Highlights...)
	return e
}
