package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spigell/resume-screener/internal/resume"
	"github.com/spigell/resume-screener/internal/scoring"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a résumé against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

type scoreOutput struct {
	Name      string               `json:"name,omitempty"`
	Email     string               `json:"email,omitempty"`
	Phone     string               `json:"phone,omitempty"`
	TopSkills []string             `json:"top_skills"`
	Result    *scoring.Result      `json:"result"`
	Resume    *resume.ParsedResume `json:"resume,omitempty"`
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("resume", "r", "", "résumé file (.pdf, .txt, .md, .html); - reads stdin as text")
	scoreCmd.Flags().StringP("job-title", "t", "", "job title")
	scoreCmd.Flags().StringP("job-description", "D", "", "job description text")
	scoreCmd.Flags().String("job-file", "", "file with the job description")
	scoreCmd.Flags().BoolP("interactive", "i", false, "ask for a missing job title or description")
	scoreCmd.Flags().Bool("show-parsed", false, "include the full parsed résumé in the output")

	scoreCmd.MarkFlagRequired("resume")
}

func score(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

	path, _ := cmd.Flags().GetString("resume")
	title, _ := cmd.Flags().GetString("job-title")
	description, _ := cmd.Flags().GetString("job-description")
	jobFile, _ := cmd.Flags().GetString("job-file")
	interactive, _ := cmd.Flags().GetBool("interactive")
	showParsed, _ := cmd.Flags().GetBool("show-parsed")

	if jobFile != "" {
		data, err := os.ReadFile(jobFile)
		if err != nil {
			logger.Fatal("reading job description file", zap.String("file", jobFile), zap.Error(err))
		}
		description = string(data)
	}

	if interactive {
		var err error
		title, description, err = askJob(title, description)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	data, err := readResume(path)
	if err != nil {
		logger.Fatal("reading resume", zap.String("file", path), zap.Error(err))
	}

	filename := filepath.Base(path)
	if path == "-" {
		filename = "stdin.txt"
	}

	pipeline, err := newBackends(config, logger).pipeline()
	if err != nil {
		logger.Fatal("preparing backends", zap.Error(err))
	}

	logger.Info("starting the screening",
		zap.String("version", version),
		zap.String("resume", filename),
		zap.String("job_title", title),
		zap.String("llm_mode", config.LLM.Mode),
	)

	report, err := pipeline.Run(ctx, data, filename, title, description)
	if err != nil {
		if errors.Is(err, scoring.ErrNoText) || errors.Is(err, scoring.ErrNoJobDescription) {
			logger.Fatal("cannot screen the resume", zap.Error(err))
		}
		logger.Fatal("screening failed", zap.Error(err))
	}

	out := scoreOutput{
		Email:     report.Resume.BasicFields.Email,
		Phone:     report.Resume.BasicFields.Phone,
		TopSkills: report.Resume.TopSkills(config.Skills.TopK),
		Result:    report.Result,
	}
	if len(report.Resume.BasicFields.Names) > 0 {
		out.Name = report.Resume.BasicFields.Names[0]
	}
	if showParsed {
		out.Resume = report.Resume
	}

	if err := printJSON(out); err != nil {
		logger.Fatal("printing result", zap.Error(err))
	}
}

func askJob(title, description string) (string, string, error) {
	if strings.TrimSpace(title) == "" {
		prompt := promptui.Prompt{Label: "Job title"}
		value, err := prompt.Run()
		if err != nil {
			return "", "", err
		}
		title = value
	}

	if strings.TrimSpace(description) == "" {
		prompt := promptui.Prompt{
			Label: "Job description",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return scoring.ErrNoJobDescription
				}
				return nil
			},
		}
		value, err := prompt.Run()
		if err != nil {
			return "", "", err
		}
		description = value
	}

	return title, description, nil
}
