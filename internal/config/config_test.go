package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRequiresExactlyOneSink(t *testing.T) {
	c := Config{OutputFormat: OutputFormatLiME}
	require.Error(t, c.Validate(), "neither --outputfile nor --stdout set")

	c = Config{OutputFile: "/tmp/out", UseStdout: true, OutputFormat: OutputFormatLiME}
	require.Error(t, c.Validate(), "both set")

	c = Config{OutputFile: "/tmp/out", OutputFormat: OutputFormatLiME}
	require.NoError(t, c.Validate())

	c = Config{UseStdout: true, OutputFormat: OutputFormatRaw}
	require.NoError(t, c.Validate())
}

func TestValidateRejectsUnknownOutputFormat(t *testing.T) {
	c := Config{UseStdout: true, OutputFormat: "weird"}
	require.Error(t, c.Validate())
}
