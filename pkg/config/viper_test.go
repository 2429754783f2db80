package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/thinkprobe/pkg/config"
)

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "viper-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { os.RemoveAll(tmpDir) })
	})

	It("falls back to defaults without a config file", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(config.FromViper(v)).To(Equal(config.NewDefaultConfig()))
	})

	It("layers file values over defaults", func() {
		data := "[request]\nmodel = \"from-file\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.Request.Model).To(Equal("from-file"))
		Expect(cfg.Request.MaxTokens).To(Equal(2048))
	})

	It("layers environment variables over file values", func() {
		data := "[request]\nmodel = \"from-file\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())
		GinkgoT().Setenv("THINKPROBE_REQUEST_MODEL", "from-env")
		GinkgoT().Setenv("THINKPROBE_THINKING_BUDGET_TOKENS", "3000")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.Request.Model).To(Equal("from-env"))
		Expect(cfg.Thinking.BudgetTokens).To(Equal(3000))
	})

	It("layers bound flags over everything else", func() {
		GinkgoT().Setenv("THINKPROBE_ENDPOINT_URL", "http://from-env:1")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		var url string
		var maxTokens int
		var render bool
		cmd := &cobra.Command{Use: "test"}
		config.AddStringFlag(cmd, config.RunFlags, config.FlagURL, &url)
		config.AddIntFlag(cmd, config.RunFlags, config.FlagMaxTokens, &maxTokens)
		config.AddBoolFlag(cmd, config.RunFlags, config.FlagRender, &render)
		Expect(cmd.ParseFlags([]string{"--url", "http://from-flag:2", "--render"})).To(Succeed())

		config.BindRegisteredFlags(v, cmd, config.RunFlags, config.RunFlags.Keys())

		cfg := config.FromViper(v)
		Expect(cfg.Endpoint.URL).To(Equal("http://from-flag:2"))
		Expect(cfg.Output.Render).To(BeTrue())
		Expect(cfg.Request.MaxTokens).To(Equal(2048))
	})

	It("rejects a malformed config file", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[[[ nope"), 0o600)).To(Succeed())

		_, err := config.InitViper(tmpDir)
		Expect(err).To(MatchError(ContainSubstring("reading config")))
	})
})

var _ = Describe("LoadDotEnv", func() {
	It("loads variables without overriding the environment", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, ".env")
		data := "THINKPROBE_TEST_DOTENV_NEW=from-file\nTHINKPROBE_TEST_DOTENV_SET=from-file\n"
		Expect(os.WriteFile(path, []byte(data), 0o600)).To(Succeed())

		GinkgoT().Setenv("THINKPROBE_TEST_DOTENV_SET", "from-env")
		// Setenv restores the previous value; unset the new key ourselves.
		DeferCleanup(os.Unsetenv, "THINKPROBE_TEST_DOTENV_NEW")

		Expect(config.LoadDotEnv(path)).To(Succeed())
		Expect(os.Getenv("THINKPROBE_TEST_DOTENV_NEW")).To(Equal("from-file"))
		Expect(os.Getenv("THINKPROBE_TEST_DOTENV_SET")).To(Equal("from-env"))
	})

	It("ignores missing files", func() {
		Expect(config.LoadDotEnv(filepath.Join(GinkgoT().TempDir(), "missing.env"))).To(Succeed())
	})
})

var _ = Describe("Flag registry", func() {
	It("registers flags with defaults from NewDefaultConfig", func() {
		var model string
		var budget int
		cmd := &cobra.Command{Use: "test"}
		config.AddStringFlag(cmd, config.RunFlags, config.FlagModel, &model)
		config.AddIntFlag(cmd, config.RunFlags, config.FlagBudgetTokens, &budget)

		Expect(cmd.Flags().Lookup("model").DefValue).To(Equal("claude-sonnet-4.5"))
		Expect(cmd.Flags().Lookup("model").Shorthand).To(Equal("m"))
		Expect(cmd.Flags().Lookup("budget-tokens").DefValue).To(Equal("1000"))
	})

	It("ignores unknown registry keys", func() {
		var s string
		cmd := &cobra.Command{Use: "test"}
		config.AddStringFlag(cmd, config.RunFlags, "nope", &s)
		Expect(cmd.Flags().HasFlags()).To(BeFalse())
	})

	It("maps every run flag to a config key", func() {
		for _, key := range config.RunFlags.Keys() {
			Expect(config.IsValidConfigKey(config.RunFlags[key].ViperKey)).To(BeTrue(), key)
		}
	})
})
