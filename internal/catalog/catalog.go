package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

//go:embed data
var embedded embed.FS

// Keyword é um termo procurado na descrição e o peso que ele soma ao tipo
type Keyword struct {
	Term   string `yaml:"term" json:"term"`
	Weight int    `yaml:"weight" json:"weight"`
}

// TypeKeywords agrupa as palavras-chave de um tipo de projeto
type TypeKeywords struct {
	Type     model.ProjectType `yaml:"type" json:"type"`
	Keywords []Keyword         `yaml:"keywords" json:"keywords"`
}

// Catalog contém os dados estáticos carregados uma única vez por processo.
// Nada do que ele expõe pode ser alterado pelo chamador.
type Catalog struct {
	keywords  []TypeKeywords
	templates map[model.ProjectType]model.Template
	quiz      quizFile
	examples  []ExampleProject
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded data files. The data is
// part of the binary, so a load failure is a programming error and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			panic(fmt.Sprintf("catalog: %v", err))
		}
		c, err := Load(sub)
		if err != nil {
			panic(fmt.Sprintf("catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads keywords.yaml, quiz.yaml, examples.yaml and templates/*.yaml from
// fsys and validates them.
func Load(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{templates: make(map[model.ProjectType]model.Template)}

	if err := decodeFile(fsys, "keywords.yaml", &c.keywords); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, "quiz.yaml", &c.quiz); err != nil {
		return nil, err
	}
	if err := decodeFile(fsys, "examples.yaml", &c.examples); err != nil {
		return nil, err
	}

	files, err := fs.Glob(fsys, "templates/*.yaml")
	if err != nil {
		return nil, err
	}
	for _, name := range files {
		key := model.ProjectType(strings.TrimSuffix(path.Base(name), ".yaml"))
		if !key.Valid() {
			return nil, fmt.Errorf("template %s: tipo de projeto desconhecido", name)
		}
		var tpl model.Template
		if err := decodeFile(fsys, name, &tpl); err != nil {
			return nil, err
		}
		c.templates[key] = tpl
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeFile(fsys fs.FS, name string, out interface{}) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("lendo %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decodificando %s: %w", name, err)
	}
	return nil
}

// Template returns a deep copy of the template for t
func (c *Catalog) Template(t model.ProjectType) (model.Template, bool) {
	tpl, ok := c.templates[t]
	if !ok {
		return model.Template{}, false
	}
	return tpl.Clone(), true
}

// Keywords returns the detection tables in canonical order
func (c *Catalog) Keywords() []TypeKeywords {
	out := make([]TypeKeywords, len(c.keywords))
	for i, tk := range c.keywords {
		out[i] = TypeKeywords{Type: tk.Type, Keywords: append([]Keyword(nil), tk.Keywords...)}
	}
	return out
}

// Examples returns the sample project prompts
func (c *Catalog) Examples() []ExampleProject {
	out := make([]ExampleProject, len(c.examples))
	for i, e := range c.examples {
		out[i] = e.clone()
	}
	return out
}

// Types returns the project types that have a template, in canonical order
// with generic last.
func (c *Catalog) Types() []model.ProjectType {
	types := make([]model.ProjectType, 0, len(c.templates))
	for _, t := range model.DetectableProjectTypes {
		if _, ok := c.templates[t]; ok {
			types = append(types, t)
		}
	}
	if _, ok := c.templates[model.ProjectTypeGeneric]; ok {
		types = append(types, model.ProjectTypeGeneric)
	}
	return types
}
