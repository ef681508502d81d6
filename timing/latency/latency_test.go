package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
)

var _ = Describe("Latency", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	Describe("Default Timing Values", func() {
		It("should return 2 cycles for ADD", func() {
			Expect(table.GetLatency(insts.OpADD)).To(Equal(uint64(2)))
		})

		It("should return 2 cycles for SUB", func() {
			Expect(table.GetLatency(insts.OpSUB)).To(Equal(uint64(2)))
		})

		It("should return 10 cycles for MUL", func() {
			Expect(table.GetLatency(insts.OpMUL)).To(Equal(uint64(10)))
		})

		It("should return 40 cycles for DIV", func() {
			Expect(table.GetLatency(insts.OpDIV)).To(Equal(uint64(40)))
		})

		It("should return 1 cycle for unknown opcodes", func() {
			Expect(table.GetLatency(insts.Op(42))).To(Equal(uint64(1)))
		})

		It("should look up instruction latency by opcode", func() {
			inst, err := insts.FromIDs(2, 1, 2, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(table.GetInstLatency(inst)).To(Equal(uint64(10)))
		})

		It("should report the longest latency", func() {
			Expect(table.MaxLatency()).To(Equal(uint64(40)))
		})
	})

	Describe("Custom Configuration", func() {
		It("should use custom config values", func() {
			config := &latency.TimingConfig{
				AddLatency: 1,
				SubLatency: 3,
				MulLatency: 4,
				DivLatency: 12,
			}
			customTable := latency.NewTableWithConfig(config)

			Expect(customTable.GetLatency(insts.OpADD)).To(Equal(uint64(1)))
			Expect(customTable.GetLatency(insts.OpSUB)).To(Equal(uint64(3)))
			Expect(customTable.GetLatency(insts.OpMUL)).To(Equal(uint64(4)))
			Expect(customTable.GetLatency(insts.OpDIV)).To(Equal(uint64(12)))
			Expect(customTable.Config()).To(BeIdenticalTo(config))
		})
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			config := latency.DefaultTimingConfig()
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Validation", func() {
		It("should reject zero ADD latency", func() {
			config := latency.DefaultTimingConfig()
			config.AddLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero SUB latency", func() {
			config := latency.DefaultTimingConfig()
			config.SubLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero MUL latency", func() {
			config := latency.DefaultTimingConfig()
			config.MulLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})

		It("should reject zero DIV latency", func() {
			config := latency.DefaultTimingConfig()
			config.DivLatency = 0
			Expect(config.Validate()).To(HaveOccurred())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()

			clone.AddLatency = 100

			Expect(original.AddLatency).To(Equal(uint64(2)))
			Expect(clone.AddLatency).To(Equal(uint64(100)))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "latency-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := latency.DefaultTimingConfig()
			original.MulLatency = 5
			original.DivLatency = 20

			path := filepath.Join(tempDir, "timing.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.MulLatency).To(Equal(uint64(5)))
			Expect(loaded.DivLatency).To(Equal(uint64(20)))
		})

		It("should keep defaults for fields missing from the file", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"mul_latency": 3}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.MulLatency).To(Equal(uint64(3)))
			Expect(loaded.AddLatency).To(Equal(uint64(2)))
			Expect(loaded.DivLatency).To(Equal(uint64(40)))
		})

		It("should reject a config with a zero latency", func() {
			path := filepath.Join(tempDir, "zero.json")
			Expect(os.WriteFile(path, []byte(`{"add_latency": 0}`), 0644)).To(Succeed())

			_, err := latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig("/nonexistent/path/timing.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
