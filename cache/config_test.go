package cache_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/csim/cache"
)

var _ = Describe("Config", func() {
	Describe("DefaultConfig", func() {
		It("should describe 16 direct mapped sets of 16 bytes", func() {
			config := cache.DefaultConfig()
			Expect(config.NumSets()).To(Equal(16))
			Expect(config.Associativity).To(Equal(1))
			Expect(config.BlockSize()).To(Equal(uint64(16)))
			Expect(config.NumLines()).To(Equal(16))
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Validate", func() {
		expectConfigError := func(config cache.Config, field string) {
			err := config.Validate()
			Expect(err).To(HaveOccurred())

			var configErr *cache.ConfigError
			Expect(errors.As(err, &configErr)).To(BeTrue())
			Expect(configErr.Field).To(Equal(field))
		}

		It("should accept a single set with no block offset", func() {
			config := cache.Config{SetBits: 0, Associativity: 1, BlockBits: 0}
			Expect(config.Validate()).To(Succeed())
			Expect(config.NumSets()).To(Equal(1))
		})

		It("should reject negative set bits", func() {
			expectConfigError(
				cache.Config{SetBits: -1, Associativity: 1, BlockBits: 4},
				"set_bits")
		})

		It("should reject negative block bits", func() {
			expectConfigError(
				cache.Config{SetBits: 4, Associativity: 1, BlockBits: -2},
				"block_bits")
		})

		It("should reject zero associativity", func() {
			expectConfigError(
				cache.Config{SetBits: 4, Associativity: 0, BlockBits: 4},
				"associativity")
		})

		It("should reject address widths wider than 64 bits", func() {
			expectConfigError(
				cache.Config{SetBits: 20, Associativity: 1, BlockBits: 45},
				"set_bits")
		})

		It("should accept block bits that consume the whole address", func() {
			config := cache.Config{SetBits: 0, Associativity: 1, BlockBits: 64}
			Expect(config.Validate()).To(Succeed())
		})

		It("should reject caches that are too large to allocate", func() {
			expectConfigError(
				cache.Config{SetBits: 30, Associativity: 1, BlockBits: 4},
				"set_bits")
			expectConfigError(
				cache.Config{SetBits: 20, Associativity: 128, BlockBits: 4},
				"associativity")
		})

		It("should name the field in the message", func() {
			err := cache.Config{SetBits: 1, Associativity: 0}.Validate()
			Expect(err).To(MatchError(ContainSubstring("associativity=0")))
		})
	})

	Describe("Decode", func() {
		It("should use the configured widths", func() {
			config := cache.Config{SetBits: 4, Associativity: 1, BlockBits: 4}
			tag, set := config.Decode(0x12345)
			Expect(tag).To(Equal(uint64(0x123)))
			Expect(set).To(Equal(4))
		})
	})

	Describe("Config File", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "cache-config-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should keep defaults for fields missing from the file", func() {
			path := filepath.Join(tempDir, "config.json")
			Expect(os.WriteFile(path, []byte(`{"associativity": 4}`), 0644)).
				To(Succeed())

			config, err := cache.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(config.SetBits).To(Equal(4))
			Expect(config.Associativity).To(Equal(4))
			Expect(config.BlockBits).To(Equal(4))
		})

		It("should round-trip through SaveConfig", func() {
			path := filepath.Join(tempDir, "config.json")
			saved := cache.Config{SetBits: 5, Associativity: 2, BlockBits: 3}
			Expect(saved.SaveConfig(path)).To(Succeed())

			loaded, err := cache.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(saved))
		})

		It("should fail on a missing file", func() {
			_, err := cache.LoadConfig(filepath.Join(tempDir, "missing.json"))
			Expect(err).To(MatchError(ContainSubstring("failed to read")))
		})

		It("should fail on malformed JSON", func() {
			path := filepath.Join(tempDir, "bad.json")
			Expect(os.WriteFile(path, []byte(`{"set_bits":`), 0644)).
				To(Succeed())

			_, err := cache.LoadConfig(path)
			Expect(err).To(MatchError(ContainSubstring("failed to parse")))
		})
	})
})
