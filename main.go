// forge is the asset build pipeline's terminal front-end: a trivial REPL
// reading one command line at a time and handing it to the Command
// Dispatcher (spec.md §4.8, §5: "the terminal front-end itself is trivial
// and uninteresting — all the interesting behavior lives in the
// dispatcher and pipelines it wraps").
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spaghettifunk/forge/internal/buildctx"
	"github.com/spaghettifunk/forge/internal/command"
	"github.com/spaghettifunk/forge/internal/corelog"
)

func main() {
	outputRoot := "."
	if len(os.Args) > 1 {
		outputRoot = os.Args[1]
	}

	ctx := buildctx.New(outputRoot)
	reg, err := command.NewRegistry(ctx)
	if err != nil {
		corelog.LogFatal("failed to initialise pipelines: %v", err)
	}

	d := command.NewDispatcher()
	command.RegisterBuiltins(d, reg)

	corelog.LogInfo("forge ready, output root %q. Type --help for commands, --exit to quit.", outputRoot)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := scanner.Text()
		kind, err := d.Dispatch(line)
		switch kind {
		case command.ExitCommand:
			return
		case command.NoError:
			if err != nil {
				corelog.LogError("%v", err)
			}
		default:
			corelog.LogWarn("%s: %q", kind, line)
		}
		fmt.Print("> ")
	}
}
