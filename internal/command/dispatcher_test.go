package command

import "testing"

type recordingCommand struct {
	key   string
	flags []Flag
	got   ParsedFlags
	calls int
}

func (c *recordingCommand) Key() string  { return c.key }
func (c *recordingCommand) Flags() []Flag { return c.flags }
func (c *recordingCommand) Run(flags ParsedFlags) error {
	c.got = flags
	c.calls++
	return nil
}

func TestDispatchRequiresDoubleDashPrefix(t *testing.T) {
	d := NewDispatcher()
	kind, _ := d.Dispatch("help")
	if kind != InvalidSyntax {
		t.Fatalf("got %v, want InvalidSyntax", kind)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	d := NewDispatcher()
	kind, _ := d.Dispatch("--nope")
	if kind != UnknownCommand {
		t.Fatalf("got %v, want UnknownCommand", kind)
	}
}

func TestDispatchExitCommand(t *testing.T) {
	d := NewDispatcher()
	kind, _ := d.Dispatch("--exit")
	if kind != ExitCommand {
		t.Fatalf("got %v, want ExitCommand", kind)
	}
}

func TestDispatchMissingRequiredFlag(t *testing.T) {
	d := NewDispatcher()
	cmd := &recordingCommand{key: "--convert", flags: []Flag{{Key: "-dir", HasArgument: true, Optional: false}}}
	d.Register(cmd)

	kind, _ := d.Dispatch("--convert")
	if kind != MissingFlag {
		t.Fatalf("got %v, want MissingFlag", kind)
	}
	if cmd.calls != 0 {
		t.Fatalf("Run should not have been called")
	}
}

func TestDispatchUnknownFlagIsSilentlyDropped(t *testing.T) {
	d := NewDispatcher()
	cmd := &recordingCommand{key: "--convert", flags: []Flag{{Key: "-dir", HasArgument: true, Optional: false}}}
	d.Register(cmd)

	kind, err := d.Dispatch("--convert -bogus ignored -dir assets")
	if kind != NoError || err != nil {
		t.Fatalf("got kind=%v err=%v", kind, err)
	}
	if cmd.got.First("-dir") != "assets" {
		t.Fatalf("-dir value: got %q", cmd.got.First("-dir"))
	}
	if cmd.got.Has("-bogus") {
		t.Fatalf("unknown flag -bogus should not appear in ParsedFlags")
	}
}

func TestDispatchAllowMultiple(t *testing.T) {
	d := NewDispatcher()
	cmd := &recordingCommand{key: "--convert", flags: []Flag{{Key: "-dir", HasArgument: true, AllowMultiple: true}}}
	d.Register(cmd)

	kind, _ := d.Dispatch("--convert -dir first -dir second")
	if kind != NoError {
		t.Fatalf("got %v", kind)
	}
	if got := cmd.got["-dir"]; len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("got %v", got)
	}
}

func TestDispatchDuplicateNonMultipleFlagIsInvalid(t *testing.T) {
	d := NewDispatcher()
	cmd := &recordingCommand{key: "--convert", flags: []Flag{{Key: "-dir", HasArgument: true}}}
	d.Register(cmd)

	kind, _ := d.Dispatch("--convert -dir first -dir second")
	if kind != InvalidFlag {
		t.Fatalf("got %v, want InvalidFlag", kind)
	}
}

func TestDispatchNoArgumentFlagPresence(t *testing.T) {
	d := NewDispatcher()
	cmd := &recordingCommand{key: "--convert_models", flags: []Flag{{Key: "-single", Optional: true}}}
	d.Register(cmd)

	kind, _ := d.Dispatch("--convert_models -single")
	if kind != NoError {
		t.Fatalf("got %v", kind)
	}
	if !cmd.got.Has("-single") {
		t.Fatalf("expected -single to be present")
	}
	if cmd.got.First("-single") != "" {
		t.Fatalf("expected empty value for a no-argument flag")
	}
}
