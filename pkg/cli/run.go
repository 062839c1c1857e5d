package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/cli/config"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/infra/executor"
	"github.com/m-mizutani/shipwright/pkg/infra/memory"
	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var (
		githubCfg   config.GitHub
		pipelineCfg config.Pipeline
		indexCfg    config.Index
	)

	var (
		owner     string
		repo      string
		tag       string
		commitSHA string
	)

	flags := append(githubCfg.Flags(), pipelineCfg.Flags()...)
	flags = append(flags, indexCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Repository owner",
			Required:    true,
			Destination: &owner,
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository name",
			Required:    true,
			Destination: &repo,
		},
		&cli.StringFlag{
			Name:        "tag",
			Usage:       "Tag to release",
			Required:    true,
			Destination: &tag,
		},
		&cli.StringFlag{
			Name:        "commit-sha",
			Usage:       "Commit the tag points at (resolved from the tag when omitted)",
			Destination: &commitSHA,
		},
	)

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Execute the release pipeline once for a tag",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			pipelineUC := usecase.NewPipeline(
				githubClient,
				indexCfg.Configure(),
				executor.New(),
				usecase.WithRunRepository(memory.NewRunRepository()),
				usecase.WithPipelineConfig(pipelineCfg.Config()),
			)

			push := &model.PushInfo{
				Owner:     owner,
				Repo:      repo,
				Ref:       "refs/tags/" + tag,
				Tag:       tag,
				CommitSHA: commitSHA,
				Pusher:    "cli",
			}

			run, runErr := pipelineUC.Execute(ctx, push)
			printRun(run)

			if runErr != nil {
				return goerr.Wrap(runErr, "pipeline failed", goerr.V("run_id", run.ID))
			}
			return nil
		},
	}
}

// printRun writes a per-step summary of a finished run to stdout.
func printRun(run *model.PipelineRun) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("\nRun %s: %s %s\n", run.ID, run.FullName(), run.Tag)
	for _, step := range run.Steps {
		var mark string
		switch step.Status {
		case model.StepStatusSucceeded:
			mark = green("ok")
		case model.StepStatusFailed:
			mark = red("failed")
		case model.StepStatusSkipped:
			mark = yellow("skipped")
		default:
			mark = string(step.Status)
		}

		if d := step.Duration(); d > 0 {
			fmt.Printf("  %-16s %s (%s)\n", step.Name, mark, d.Round(time.Millisecond))
		} else {
			fmt.Printf("  %-16s %s\n", step.Name, mark)
		}
		if step.Error != "" {
			fmt.Printf("      %s\n", red(step.Error))
		}
	}

	if run.ReleaseURL != "" {
		fmt.Printf("Release:  %s\n", run.ReleaseURL)
	}
	if run.ArtifactName != "" {
		fmt.Printf("Artifact: %s\n", run.ArtifactName)
	}

	switch run.Status {
	case model.RunStatusSucceeded:
		fmt.Printf("Result:   %s in %s\n", green("succeeded"), run.Duration().Round(time.Millisecond))
	default:
		fmt.Printf("Result:   %s\n", red(string(run.Status)))
	}
}
