package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	_, err = root.ExecuteC()
	return buf.String(), err
}

func TestCMD(t *testing.T) {
	output, err := executeCommand(NewRootCmd(), "")
	assert.Nil(t, err)
	assert.NotNil(t, output)
}

func TestVersionCmd(t *testing.T) {
	output, err := executeCommand(NewRootCmd(), "version")
	assert.Nil(t, err)
	assert.Contains(t, output, "KeyMint")
}

func TestKeysGenerateCmd(t *testing.T) {
	output, err := executeCommand(NewRootCmd(), "keys", "generate")
	assert.Nil(t, err)
	assert.Contains(t, output, "private_key:")
	assert.Contains(t, output, "public_key:")
}
