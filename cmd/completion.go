package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/valutatrade/valutatrade"
	"github.com/valutatrade/valutatrade/docs"
)

// flagPredictors suggest values for flags that take a currency or a source.
func flagPredictors() map[string]complete.Predictor {
	var codes predict.Set
	for _, c := range valutatrade.Currencies() {
		codes = append(codes, c.Code())
	}
	return map[string]complete.Predictor{
		"currency": codes,
		"from":     codes,
		"to":       codes,
		"base":     codes,
		"source":   predict.Set{"coingecko", "exchangerate"},
	}
}

// Completion returns the shell completion of every command registered in c.
func Completion(c *subcommands.Commander) *complete.Command {
	predictors := flagPredictors()
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{},
	}
	flag.VisitAll(func(f *flag.Flag) { root.Flags[f.Name] = predict.Something })

	c.VisitCommands(func(_ *subcommands.CommandGroup, sc subcommands.Command) {
		fs := flag.NewFlagSet(sc.Name(), flag.ContinueOnError)
		sc.SetFlags(fs)
		cc := &complete.Command{Flags: map[string]complete.Predictor{}}
		fs.VisitAll(func(f *flag.Flag) {
			if p, ok := predictors[f.Name]; ok {
				cc.Flags[f.Name] = p
				return
			}
			cc.Flags[f.Name] = predict.Something
		})
		root.Sub[sc.Name()] = cc
	})

	if topic, ok := root.Sub["topic"]; ok {
		var names predict.Set
		if topics, err := docs.Topics(); err == nil {
			for _, t := range topics {
				names = append(names, t.Name)
			}
		}
		topic.Args = names
	}
	return root
}
