package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]map[string]command{
	"reports": {
		"list":       reportsList,
		"show":       reportsShow,
		"create":     reportsCreate,
		"delete":     reportsDelete,
		"export":     reportsExport,
		"compare":    reportsCompare,
		"benchmarks": reportsBenchmarks,
	},
	"predictions": {
		"list":   predictionsList,
		"show":   predictionsShow,
		"create": predictionsCreate,
	},
	"insights": {
		"active":     insightsActive,
		"page":       insightsPage,
		"trending":   insightsTrending,
		"summary":    insightsSummary,
		"deactivate": insightsDeactivate,
		"activate":   insightsActivate,
		"generate":   insightsGenerate,
	},
	"metrics": {
		"record":  metricsRecord,
		"entity":  metricsEntity,
		"period":  metricsPeriod,
		"average": metricsAverage,
		"summary": metricsSummary,
		"type":    metricsType,
	},
	"schedules": {
		"list":   schedulesList,
		"create": schedulesCreate,
		"toggle": schedulesToggle,
		"delete": schedulesDelete,
	},
	"dashboards": {
		"mine":   dashboardsMine,
		"public": dashboardsPublic,
		"show":   dashboardsShow,
		"create": dashboardsCreate,
		"update": dashboardsUpdate,
		"delete": dashboardsDelete,
	},
	"quality": {
		"latest": qualityLatest,
		"low":    qualityLow,
		"assess": qualityAssess,
	},
	"admin": {
		"stats": adminStats,
	},
	"whoami": {
		"": whoami,
	},
}

// lookup resolves "<group> <command>" to its handler and remaining args.
func lookup(args []string) (command, []string, error) {
	group, ok := commands[args[0]]
	if !ok {
		return nil, nil, fmt.Errorf("unknown command group %q", args[0])
	}
	if cmd, ok := group[""]; ok {
		return cmd, args[1:], nil
	}
	if len(args) < 2 {
		return nil, nil, fmt.Errorf("%s: missing command (one of %s)", args[0], strings.Join(names(group), ", "))
	}
	cmd, ok := group[args[1]]
	if !ok {
		return nil, nil, fmt.Errorf("%s: unknown command %q (one of %s)", args[0], args[1], strings.Join(names(group), ", "))
	}
	return cmd, args[2:], nil
}

func names(group map[string]command) []string {
	out := make([]string, 0, len(group))
	for n := range group {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// parse parses flags that may appear before, between or after positional
// arguments and returns the positionals.
func parse(fs *flag.FlagSet, args []string, want int) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, usageErr("%s", fs.Name())
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
	if want >= 0 && len(pos) != want {
		return nil, usageErr("%s: expected %d argument(s), got %d", fs.Name(), want, len(pos))
	}
	return pos, nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErr("invalid %s %q", what, s)
	}
	return id, nil
}
