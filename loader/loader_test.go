package loader_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/loader"
)

const sample = `2
10
0 1 2 3
2 5 1 4
10
20
30
40
50
60
70
80
`

var _ = Describe("Loader", func() {
	Describe("Parse", func() {
		It("should parse a well-formed input", func() {
			prog, err := loader.Parse(strings.NewReader(sample))
			Expect(err).NotTo(HaveOccurred())

			Expect(prog.Cycles).To(Equal(uint64(10)))
			Expect(prog.Instructions).To(Equal([]insts.Instruction{
				{Op: insts.OpADD, Rd: 1, Rs1: 2, Rs2: 3},
				{Op: insts.OpMUL, Rd: 5, Rs1: 1, Rs2: 4},
			}))
			Expect(prog.Registers).To(Equal([]int64{10, 20, 30, 40, 50, 60, 70, 80}))
			Expect(prog.RegFile().ReadReg(7)).To(Equal(int64(80)))
		})

		It("should skip blank lines and comments", func() {
			input := "# two adds\n2\n\n5\n0 1 2 3\n  1 4 5 6  \n" +
				strings.Repeat("# reg\n-1\n", 8)

			prog, err := loader.Parse(strings.NewReader(input))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Instructions).To(HaveLen(2))
			Expect(prog.Instructions[1].Op).To(Equal(insts.OpSUB))
			Expect(prog.Registers).To(HaveLen(8))
			Expect(prog.Registers[0]).To(Equal(int64(-1)))
		})

		It("should accept an empty program", func() {
			prog, err := loader.Parse(strings.NewReader("0\n3\n" + strings.Repeat("0\n", 8)))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Instructions).To(BeEmpty())
		})

		It("should read the configured number of registers", func() {
			prog, err := loader.Parse(strings.NewReader("0\n1\n7\n8\n"), loader.WithNumRegs(2))
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Registers).To(Equal([]int64{7, 8}))
		})

		DescribeTable("malformed input",
			func(input string, line int, msg string) {
				_, err := loader.Parse(strings.NewReader(input))

				var formatErr *loader.FormatError
				Expect(errors.As(err, &formatErr)).To(BeTrue())
				Expect(formatErr.Line).To(Equal(line))
				Expect(err.Error()).To(ContainSubstring(msg))
			},
			Entry("empty input", "", 0, "instruction count"),
			Entry("non-numeric count", "two\n", 1, "instruction count"),
			Entry("negative cycles", "1\n-4\n", 2, "negative"),
			Entry("short instruction", "1\n5\n0 1 2\n", 3, "expected 4 fields"),
			Entry("unknown opcode", "1\n5\n7 1 2 3\n", 3, "unknown opcode"),
			Entry("register out of range", "1\n5\n0 8 2 3\n", 3, "out of range"),
			Entry("missing registers", "1\n5\n0 1 2 3\n1\n2\n", 0, "value of R2"),
			Entry("two values on a register line", "0\n5\n1 2\n", 3, "expected 1 value"),
		)

		It("should unwrap number syntax errors", func() {
			_, err := loader.Parse(strings.NewReader("1\n5\n0 x 2 3\n"))
			Expect(errors.Is(err, strconv.ErrSyntax)).To(BeTrue())
		})
	})

	Describe("Load", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "loader-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should load a file", func() {
			path := filepath.Join(tempDir, "input.txt")
			Expect(os.WriteFile(path, []byte(sample), 0o644)).To(Succeed())

			prog, err := loader.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Instructions).To(HaveLen(2))
		})

		It("should fail for a missing file", func() {
			_, err := loader.Load(filepath.Join(tempDir, "missing.txt"))
			Expect(err).To(MatchError(ContainSubstring("failed to open input")))
			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})
	})

	Describe("Format", func() {
		It("should write input that parses back to the same program", func() {
			prog, err := loader.Parse(strings.NewReader(sample))
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(loader.Format(&buf, prog)).To(Succeed())
			Expect(buf.String()).To(Equal(sample))
		})
	})
})
