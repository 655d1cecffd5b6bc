package command

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sumconf-go/internal/cli/config"
	"github.com/yndnr/sumconf-go/internal/cli/output"
	"github.com/yndnr/sumconf-go/internal/core/service"
)

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the combined configuration for a package",
		ArgsUsage: "<packageName>",
		Flags:     gatherFlags(),
		Action:    getAction,
	}
}

func getAction(c *cli.Context) error {
	appName, err := packageName(c)
	if err != nil {
		return err
	}
	st, err := setup(c)
	if err != nil {
		return err
	}

	opts, err := st.gatherOptions(appName)
	if err != nil {
		return err
	}
	res, err := st.gatherer.Gather(st.context(c), appName, opts)
	if err != nil {
		return err
	}
	return st.print(res)
}

// print writes a gather result in the configured format.
func (st *state) print(res *service.Result) error {
	if !st.cfg.Source {
		return st.formatter().Format(st.stdout, res.Value)
	}

	cwd, _ := os.Getwd()
	groups := output.GroupBySource(res.Value, res.Source, res.Files, cwd)
	switch st.cfg.Output {
	case config.OutputTable:
		return output.SourceTable(groups).Render(st.stdout)
	case config.OutputJSON:
		return st.formatter().Format(st.stdout, output.SourceMap(groups))
	default:
		return output.WriteSources(st.stdout, groups)
	}
}
