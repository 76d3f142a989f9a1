package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "ikedadada/go-onionchain/internal/domain/value_object"
)

func TestKeygenCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "key.pem")

	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--out", out})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.Contains(stdout.String(), out+".pub"))

	privData, err := os.ReadFile(out)
	require.NoError(t, err)
	priv, err := vo.RSAPrivKeyFromPEM(privData)
	require.NoError(t, err)

	pubData, err := os.ReadFile(out + ".pub")
	require.NoError(t, err)
	pub, err := vo.RSAPubKeyFromPEM(pubData)
	require.NoError(t, err)
	assert.True(t, pub.Equal(priv.PublicKey()))

	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), st.Mode().Perm())
}

func TestKeygenCommand_BadDir(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--out", filepath.Join(t.TempDir(), "missing", "key.pem")})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.Execute())
}
