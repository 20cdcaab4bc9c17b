package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/source-dashboard/config"
)

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	writeConfig := func(content string) {
		err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(content), 0644)
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		tempDir = GinkgoT().TempDir()
		Expect(os.Chdir(tempDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		viper.Reset()
	})

	Describe("Load", func() {
		Context("with valid config file", func() {
			BeforeEach(func() {
				writeConfig(`
server:
  address: "127.0.0.1:9090"
  environment: "staging"

logging:
  level: "debug"

runtime_config:
  base_url: "https://config.example.com"

metrics:
  buffer_size: 50
`)
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal("127.0.0.1:9090"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvStaging))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelDebug))
				Expect(cfg.RuntimeConfig.BaseURL).To(Equal("https://config.example.com"))
				Expect(cfg.Metrics.BufferSize).To(Equal(50))
			})

			It("should let environment variables win over the file", func() {
				GinkgoT().Setenv("RUNTIME_CONFIG_BASE_URL", "http://override:8090")

				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.RuntimeConfig.BaseURL).To(Equal("http://override:8090"))
			})
		})

		Context("without a config file", func() {
			It("should use defaults", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal(":8080"))
				Expect(cfg.Server.Environment).To(Equal(config.EnvDev))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelInfo))
				Expect(cfg.RuntimeConfig.BaseURL).To(Equal("http://localhost:8090"))
				Expect(cfg.Metrics.BufferSize).To(Equal(100))
			})

			It("should fail when an explicit file is missing", func() {
				viper.SetConfigFile(filepath.Join(tempDir, "absent.yaml"))
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with invalid values", func() {
			It("should reject an unknown environment", func() {
				writeConfig("server:\n  environment: \"qa\"\n")
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject a runtime config origin without a scheme", func() {
				writeConfig("runtime_config:\n  base_url: \"localhost:8090\"\n")
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Validate", func() {
		valid := func() config.Config {
			return config.Config{
				Server:        config.ServerConfig{Address: ":8080", Environment: config.EnvDev},
				Logging:       config.LoggingConfig{Level: config.LogLevelInfo},
				RuntimeConfig: config.RuntimeConfig{BaseURL: "http://localhost:8090"},
				Metrics:       config.MetricsConfig{BufferSize: 10},
			}
		}

		It("should accept the defaults", func() {
			cfg := valid()
			Expect(cfg.Validate()).To(Succeed())
		})

		DescribeTable("rejects",
			func(mutate func(*config.Config)) {
				cfg := valid()
				mutate(&cfg)
				Expect(cfg.Validate()).NotTo(Succeed())
			},
			Entry("bad listen address", func(c *config.Config) { c.Server.Address = "8080" }),
			Entry("unknown log level", func(c *config.Config) { c.Logging.Level = "trace" }),
			Entry("ftp origin", func(c *config.Config) { c.RuntimeConfig.BaseURL = "ftp://host" }),
			Entry("origin without host", func(c *config.Config) { c.RuntimeConfig.BaseURL = "http://" }),
			Entry("empty metrics buffer", func(c *config.Config) { c.Metrics.BufferSize = 0 }),
		)
	})
})
