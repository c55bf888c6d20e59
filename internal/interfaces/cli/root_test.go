package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partscout/partscout/pkg/types/listing"
)

// runCLI executes the root command with args, capturing stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "partscout", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.Contains(t, cmd.Version, Version)
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"score", "analyze", "scores", "serve"} {
		assert.True(t, names[want], "expected subcommand %q", want)
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"config", "log-level", "output", "timeout", "server"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "expected persistent flag %q", name)
	}
}

func TestGetCLIContext_NotInitialized(t *testing.T) {
	cmd := NewRootCommand()

	_, err := GetCLIContext(cmd)
	require.Error(t, err)
}

func TestParseCategoryFlag(t *testing.T) {
	cat, err := parseCategoryFlag("")
	require.NoError(t, err)
	assert.Equal(t, listing.Category(""), cat)

	cat, err = parseCategoryFlag("Suspension")
	require.NoError(t, err)
	assert.Equal(t, listing.CategorySuspension, cat)

	_, err = parseCategoryFlag("furniture")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "furniture")
}

func TestParseConditionFlag(t *testing.T) {
	cond, err := parseConditionFlag("used")
	require.NoError(t, err)
	assert.Equal(t, listing.ConditionUsed, cond)

	_, err = parseConditionFlag("mint")
	require.Error(t, err)
}

func TestFormatTable(t *testing.T) {
	out := formatTable(
		[]string{"ID", "SCORE"},
		[][]string{{"score_1", "8.7"}, {"score_2", "6.0"}},
	)

	assert.Contains(t, out, "ID       SCORE")
	assert.Contains(t, out, "-------  -----")
	assert.Contains(t, out, "score_1  8.7")
	assert.Contains(t, out, "score_2  6.0")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a long ...", truncate("a long title that keeps going", 10))
}
