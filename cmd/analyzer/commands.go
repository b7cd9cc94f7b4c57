package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/freelancer-ai/analysis-api/internal/analysis"
	"github.com/freelancer-ai/analysis-api/internal/model"
	"github.com/freelancer-ai/analysis-api/internal/service"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "analyzer",
		Short: "Analýza zadání projektu pro freelancer marketplace",
		Long: `Runs the project analysis locally.

Examples:
  # Detect the project type
  analyzer detect "Potřebuji e-shop s GoPay platbou"

  # Full analysis scaled to quiz answers
  analyzer analyze "Potřebuji e-shop s GoPay platbou" --answers answers.yaml

  # Export the analysis to Excel
  analyzer export "Potřebuji e-shop s GoPay platbou" -o analyza.xlsx`,
		SilenceUsage: true,
	}

	root.AddCommand(newDetectCmd(), newAnalyzeCmd(), newQuizCmd(), newExportCmd())
	return root
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <description>",
		Short: "Detect the project type of a description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := analysis.Default()
			out := cmd.OutOrStdout()

			t, ok := a.DetectProjectType(args[0])
			if !ok {
				t = model.ProjectTypeGeneric
			}
			printDetect(out, t, a.Catalog().Label(t), ok, a.Detector().Scores(args[0]))
			return nil
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var answersFile string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <description>",
		Short: "Generate the full analysis of a description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := loadAnswers(answersFile)
			if err != nil {
				return err
			}
			if err := validateAnswers(args[0], answers); err != nil {
				return err
			}

			result := analysis.GenerateMockAnalysis(args[0], answers)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&answersFile, "answers", "a", "", "YAML file with quiz answers")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newQuizCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quiz <type>",
		Short: "Print the questionnaire of a project type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := model.ParseProjectType(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", model.ErrUnknownProjectType, args[0])
			}
			printQuiz(cmd.OutOrStdout(), analysis.Default().Catalog().QuestionsForType(t))
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var answersFile string
	var output string

	cmd := &cobra.Command{
		Use:   "export <description>",
		Short: "Export the analysis to an xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := loadAnswers(answersFile)
			if err != nil {
				return err
			}
			if err := validateAnswers(args[0], answers); err != nil {
				return err
			}

			result := analysis.GenerateMockAnalysis(args[0], answers)
			buf, err := service.NewExcelGenerator().Generate(result)
			if err != nil {
				return err
			}

			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("gravar %s: %w", output, err)
			}
			printSuccess(cmd.OutOrStdout(), "Analýza uložena do %s (%d bajtů)", output, buf.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&answersFile, "answers", "a", "", "YAML file with quiz answers")
	cmd.Flags().StringVarP(&output, "output", "o", "analyza.xlsx", "output file")
	return cmd
}

// loadAnswers lê o YAML de respostas; sem arquivo a análise não é escalada
func loadAnswers(path string) (model.QuizAnswers, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ler respostas: %w", err)
	}

	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decodificar %s: %w", path, err)
	}

	return model.QuizAnswersFromMap(raw)
}

// validateAnswers confere as respostas com o questionário do tipo detectado
func validateAnswers(description string, answers model.QuizAnswers) error {
	if answers == nil {
		return nil
	}
	a := analysis.Default()
	t, ok := a.DetectProjectType(description)
	if !ok {
		t = model.ProjectTypeGeneric
	}
	return a.Catalog().ValidateAnswers(t, answers)
}
