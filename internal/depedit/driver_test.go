// SPDX-License-Identifier: Apache-2.0

package depedit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nlplab/depedit-go/internal/conll"
	"github.com/nlplab/depedit-go/internal/depedit"
	"github.com/nlplab/depedit-go/internal/ruledef"
)

func compile(t *testing.T, line string) *ruledef.Transformation {
	t.Helper()
	tf, err := ruledef.CompileLine(line, 1)
	require.NoError(t, err)
	return tf
}

func TestProcess_IDRenumberingAcrossSentences(t *testing.T) {
	input := "1\ta\t_\tX\t_\t_\t0\troot\t_\t_\n" +
		"2\tb\t_\tX\t_\t_\t1\tdep\t_\t_\n" +
		"\n" +
		"1\tc\t_\tX\t_\t_\t0\troot\t_\t_\n"

	var out strings.Builder
	err := depedit.Process(strings.NewReader(input), &out, nil, depedit.Options{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Equal(t, "1\ta\t_\tX\t_\t_\t0\troot\t_\t_", lines[0])
	require.Equal(t, "2\tb\t_\tX\t_\t_\t1\tdep\t_\t_", lines[1])
	require.Equal(t, "1\tc\t_\tX\t_\t_\t0\troot\t_\t_", lines[len(lines)-1])
}

func TestProcess_SuperTokenPreservation(t *testing.T) {
	input := "1-2\tdon't\t_\t_\t_\t_\t_\t_\t_\t_\n" +
		"1\tdo\t_\tX\t_\t_\t0\troot\t_\t_\n" +
		"2\tn't\t_\tX\t_\t_\t1\tdep\t_\t_\n\n"

	tf := compile(t, "text=/do/\t#1\t#1:func=FIRED")

	var out strings.Builder
	err := depedit.Process(strings.NewReader(input), &out, []*ruledef.Transformation{tf}, depedit.Options{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Equal(t, "1-2\tdon't\t_\t_\t_\t_\t_\t_\t_\t_", lines[0])
}

func TestProcess_MissingHeadWarning(t *testing.T) {
	input := "1\ta\t_\tX\t_\t_\t_\troot\t_\t_\n\n"

	var warnings []string
	err := depedit.Process(strings.NewReader(input), &strings.Builder{}, nil, depedit.Options{
		Warnf: func(format string, args ...any) { warnings = append(warnings, format) },
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
}

func TestProcess_QuietSuppressesWarnings(t *testing.T) {
	input := "1\ta\t_\tX\t_\t_\t_\troot\t_\t_\n\n"

	var warnings []string
	err := depedit.Process(strings.NewReader(input), &strings.Builder{}, nil, depedit.Options{
		Quiet: true,
		Warnf: func(format string, args ...any) { warnings = append(warnings, format) },
	})
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestProcess_EightColumnRoundTrip(t *testing.T) {
	input := "1\ta\t_\tX\t_\t_\t0\troot\n\n"

	var out strings.Builder
	err := depedit.Process(strings.NewReader(input), &out, nil, depedit.Options{})
	require.NoError(t, err)
	require.Equal(t, "1\ta\t_\tX\t_\t_\t0\troot\n\n", out.String())
}

func TestProcess_DocAndSentIDDecorations(t *testing.T) {
	input := "1\ta\t_\tX\t_\t_\t0\troot\t_\t_\n\n"

	var out strings.Builder
	err := depedit.Process(strings.NewReader(input), &out, nil, depedit.Options{
		DocName:      "mydoc",
		SentIDPrefix: "mydoc",
	})
	require.NoError(t, err)

	text := out.String()
	require.True(t, strings.HasPrefix(text, "# newdoc id = mydoc\n"))
	require.Contains(t, text, "# sent_id = mydoc-1\n")
}

func TestProcess_LeadingCommentsPassThrough(t *testing.T) {
	input := "# this is a free comment\n" +
		"1\ta\t_\tX\t_\t_\t0\troot\t_\t_\n\n"

	var out strings.Builder
	err := depedit.Process(strings.NewReader(input), &out, nil, depedit.Options{})
	require.NoError(t, err)
	require.Contains(t, out.String(), "# this is a free comment\n")
}

type recordingHooks struct {
	before, after int
}

func (h *recordingHooks) BeforeSentence(*conll.Sentence) error { h.before++; return nil }
func (h *recordingHooks) AfterSentence(*conll.Sentence) error  { h.after++; return nil }

func TestProcess_HooksRunAroundEachSentence(t *testing.T) {
	input := "1\ta\t_\tX\t_\t_\t0\troot\t_\t_\n\n" +
		"1\tb\t_\tX\t_\t_\t0\troot\t_\t_\n\n"

	hooks := &recordingHooks{}
	err := depedit.Process(strings.NewReader(input), &strings.Builder{}, nil, depedit.Options{
		Hooks: hooks,
	})
	require.NoError(t, err)
	require.Equal(t, 2, hooks.before)
	require.Equal(t, 2, hooks.after)
}

func TestProcess_MetricsCallbacks(t *testing.T) {
	input := "1\ta\t_\tX\t_\t_\t0\troot\t_\t_\n\n"

	tf := compile(t, "text=/a/\t#1\t#1:func=SUBJ")

	var sentences, rulesFired int
	var warningKinds []string
	err := depedit.Process(strings.NewReader(input), &strings.Builder{}, []*ruledef.Transformation{tf}, depedit.Options{
		OnSentenceProcessed: func() { sentences++ },
		OnRuleFired:         func(int) { rulesFired++ },
		OnWarning:           func(kind string) { warningKinds = append(warningKinds, kind) },
	})
	require.NoError(t, err)
	require.Equal(t, 1, sentences)
	require.Equal(t, 1, rulesFired)
	require.Empty(t, warningKinds)
}
