// SPDX-License-Identifier: Apache-2.0

//go:build integration

package integration

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/nlplab/depedit-go/internal/depedit"
	"github.com/nlplab/depedit-go/internal/ruledef"
)

// run compiles ruleText and applies it to input, returning the rendered
// output.
func run(ruleText, input string) (string, error) {
	tfs, err := ruledef.CompileRuleFile(strings.NewReader(ruleText))
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	err = depedit.Process(strings.NewReader(input), &out, tfs, depedit.Options{Quiet: true})
	return out.String(), err
}

var _ = Describe("DepEdit end-to-end scenarios", func() {
	It("S1: rewires a single token's func field", func() {
		input := "1\ta\t_\tX\t_\t_\t0\troot\t_\t_\n" +
			"2\tb\t_\tX\t_\t_\t3\tdep\t_\t_\n" +
			"3\tc\t_\tX\t_\t_\t1\tobj\t_\t_\n"
		rule := "pos=/X/&text=/b/\t#1\t#1:func=NEW\n"

		out, err := run(rule, input)
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		Expect(lines).To(HaveLen(3))
		Expect(lines[1]).To(Equal("2\tb\t_\tX\t_\t_\t3\tNEW\t_\t_"))
		Expect(lines[0]).To(Equal("1\ta\t_\tX\t_\t_\t0\troot\t_\t_"))
		Expect(lines[2]).To(Equal("3\tc\t_\tX\t_\t_\t1\tobj\t_\t_"))
	})

	It("S2: matches adjacency by id distance", func() {
		input := "1\ta\t_\tX\t_\t_\t0\troot\t_\t_\n" +
			"2\tb\t_\tX\t_\t_\t0\troot\t_\t_\n" +
			"3\tc\t_\tX\t_\t_\t0\troot\t_\t_\n" +
			"4\td\t_\tX\t_\t_\t0\troot\t_\t_\n"
		rule := "text=/a/;text=/c/\t#1.2#2\t#1:lemma=FOUND\n"

		out, err := run(rule, input)
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		Expect(lines[0]).To(Equal("1\ta\tFOUND\tX\t_\t_\t0\troot\t_\t_"))
	})

	It("S3: applies a regex back-reference with case fold", func() {
		input := "1\tx\t_\tN\t_\t_\t0\troot\t_\t_\n" +
			"2\ty\t_\tN\t_\t_\t0\troot\t_\t_\n" +
			"3\twalking\t_\tV\t_\t_\t0\troot\t_\t_\n" +
			"4\tm\t_\tN\t_\t_\t0\troot\t_\t_\n" +
			"5\tn\t_\tN\t_\t_\t0\troot\t_\t_\n" +
			"6\to\t_\tN\t_\t_\t0\troot\t_\t_\n" +
			"7\tjumped\t_\tV\t_\t_\t0\troot\t_\t_\n"
		rule := "text=/(.+)ing/;pos=/V/&text=/(.+)ed/\t#1.*#2\t#2:lemma=$1L\n"

		out, err := run(rule, input)
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
		Expect(lines[6]).To(Equal("7\tjumped\twalk\tV\t_\t_\t0\troot\t_\t_"))
	})

	It("S4: sets a sentence annotation and 'last' stops further rules", func() {
		input := "1\ta\t_\tX\t_\t_\t0\troot\t_\t_\n" +
			"2\tSTOP\t_\tX\t_\t_\t0\troot\t_\t_\n"
		rule := "text=/STOP/\t#1\t#S:tagged=yes;last\n" +
			"text=/a/\t#1\t#1:func=SHOULDNOTFIRE\n"

		out, err := run(rule, input)
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(out, "\n")
		Expect(lines[0]).To(Equal("# tagged = yes"))
		Expect(out).NotTo(ContainSubstring("SHOULDNOTFIRE"))
	})

	It("S5: fires a triangle relation exactly once", func() {
		input := "1\ta\t_\tX\t_\t_\t0\troot\t_\t_\n" +
			"2\tb\t_\tX\t_\t_\t1\tdep\t_\t_\n" +
			"3\tc\t_\tX\t_\t_\t2\tdep\t_\t_\n"
		rule := "pos=/X/;pos=/X/;pos=/X/\t#1>#2;#2>#3;#1:pos==#3\t#3:func=TRIANGLE\n"

		out, err := run(rule, input)
		Expect(err).NotTo(HaveOccurred())

		Expect(strings.Count(out, "TRIANGLE")).To(Equal(1))
	})

	It("S6: treats super-token text as opaque", func() {
		input := "1-2\tdon't\t_\t_\t_\t_\t_\t_\t_\t_\n" +
			"1\tdo\t_\tV\t_\t_\t0\troot\t_\t_\n" +
			"2\tn't\t_\tPART\t_\t_\t1\tneg\t_\t_\n"
		rule := "text=/don't/\tnone\t#1:func=MATCHED_SUPERTOK\n" +
			"text=/do/\tnone\t#1:func=MATCHED_DO\n"

		out, err := run(rule, input)
		Expect(err).NotTo(HaveOccurred())

		Expect(out).NotTo(ContainSubstring("MATCHED_SUPERTOK"))
		Expect(out).To(ContainSubstring("MATCHED_DO"))
	})
})
