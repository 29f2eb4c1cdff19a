// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/internal/render"
	"github.com/pdiddy/citation-engine/pkg/types"
)

func filterCommand(t *testing.T, flags map[string]string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addFilterFlags(cmd)
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	return cmd
}

func TestSearchOptsFromFlags(t *testing.T) {
	cmd := filterCommand(t, map[string]string{
		"query":  "deep",
		"domain": "Machine Learning",
		"type":   "InProceedings",
		"from":   "2015",
		"tag":    "ml,vision",
	})

	opts, err := searchOptsFromFlags(cmd, []string{"learning"})
	require.NoError(t, err)
	assert.Equal(t, "deep learning", opts.Query)
	assert.Equal(t, "Machine Learning", opts.Domain)
	require.NotNil(t, opts.Type)
	assert.Equal(t, types.InProceedings, *opts.Type)
	require.NotNil(t, opts.YearFrom)
	assert.Equal(t, 2015, *opts.YearFrom)
	assert.Nil(t, opts.YearTo)
	assert.Equal(t, []string{"ml", "vision"}, opts.Tags)
}

func TestSearchOptsFromFlagsEmpty(t *testing.T) {
	opts, err := searchOptsFromFlags(filterCommand(t, nil), nil)
	require.NoError(t, err)
	assert.True(t, opts.IsEmpty())
}

func TestSearchOptsFromFlagsZeroYear(t *testing.T) {
	opts, err := searchOptsFromFlags(filterCommand(t, map[string]string{"to": "0"}), nil)
	require.NoError(t, err)
	require.NotNil(t, opts.YearTo, "an explicit flag sets the bound even at zero")
	assert.Equal(t, 0, *opts.YearTo)
}

func TestSearchOptsFromFlagsUnknownType(t *testing.T) {
	_, err := searchOptsFromFlags(filterCommand(t, map[string]string{"type": "article"}), nil)
	assert.Error(t, err)
}

func TestCountRows(t *testing.T) {
	rows := countRows(map[string]int{"Book": 1, "Article": 3, "Thesis": 1})
	assert.Equal(t, [][]string{{"Article", "3"}, {"Book", "1"}, {"Thesis", "1"}}, rows)
}

func TestWriteFormatted(t *testing.T) {
	cs := []types.Citation{
		{ID: "a", Title: "First", Authors: []string{"Ann Lee"}, Type: types.Article, Year: types.Int(2020)},
		{ID: "b", Title: "Second", Authors: []string{"Bo Chen"}, Type: types.Book, Year: types.Int(2018)},
	}
	var buf bytes.Buffer
	require.NoError(t, writeFormatted(&buf, render.StyleIEEE, cs))
	assert.Equal(t, render.IEEE(cs[0])+"\n\n"+render.IEEE(cs[1])+"\n", buf.String())
}
