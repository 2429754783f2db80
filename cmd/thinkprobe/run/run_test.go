package runcmder_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	runcmder "github.com/papercomputeco/thinkprobe/cmd/thinkprobe/run"
)

const thinkingStream = `event: content_block_start
data: {"type":"content_block_start","index":0,"content_block":{"type":"thinking","thinking":""}}

event: content_block_delta
data: {"type":"content_block_delta","index":0,"delta":{"type":"thinking_delta","thinking":"1175"}}

event: message_stop
data: {"type":"message_stop"}

`

const plainStream = `event: content_block_start
data: {"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}

event: content_block_delta
data: {"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"1175"}}

event: message_stop
data: {"type":"message_stop"}

`

// newRootCmd mirrors the persistent flags of the thinkprobe root command.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "thinkprobe"}
	root.PersistentFlags().BoolP("debug", "d", false, "")
	root.PersistentFlags().String("config-dir", "", "")
	root.AddCommand(runcmder.NewRunCmd())
	return root
}

var _ = Describe("NewRunCmd", func() {
	It("registers the probe flags", func() {
		cmd := runcmder.NewRunCmd()
		for _, name := range []string{
			"url", "path", "api-key", "model", "max-tokens", "budget-tokens",
			"prompt", "scenario", "record", "render", "expect-thinking", "timeout",
		} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})

	It("defaults to the local endpoint", func() {
		cmd := runcmder.NewRunCmd()
		Expect(cmd.Flags().Lookup("url").DefValue).To(Equal("http://localhost:8000"))
		Expect(cmd.Flags().Lookup("max-tokens").DefValue).To(Equal("2048"))
		Expect(cmd.Flags().Lookup("budget-tokens").DefValue).To(Equal("1000"))
	})
})

var _ = Describe("Run command execution", func() {
	var (
		upstream  *httptest.Server
		ignore    atomic.Bool
		requests  atomic.Int32
		configDir string
		out       *bytes.Buffer
		errOut    *bytes.Buffer
	)

	BeforeEach(func() {
		ignore.Store(false)
		requests.Store(0)
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			_, thinking := body["thinking"]

			w.Header().Set("Content-Type", "text/event-stream")
			if thinking && !ignore.Load() {
				fmt.Fprint(w, thinkingStream)
				return
			}
			fmt.Fprint(w, plainStream)
		}))

		configDir = filepath.Join(GinkgoT().TempDir(), ".thinkprobe")
		out = &bytes.Buffer{}
		errOut = &bytes.Buffer{}
	})

	AfterEach(func() {
		upstream.Close()
	})

	execute := func(args ...string) error {
		root := newRootCmd()
		root.SetOut(out)
		root.SetErr(errOut)
		root.SetArgs(append([]string{"run", "--config-dir", configDir}, args...))
		return root.Execute()
	}

	It("runs every scenario and prints a summary", func() {
		Expect(execute("--url", upstream.URL)).To(Succeed())
		Expect(requests.Load()).To(BeEquivalentTo(2))

		output := out.String()
		Expect(output).To(ContainSubstring("=== Test 1: With thinking enabled ==="))
		Expect(output).To(ContainSubstring("=== Test 2: Without thinking ==="))
		Expect(output).To(ContainSubstring("SCENARIO"))
	})

	It("runs only the selected scenario", func() {
		Expect(execute("--url", upstream.URL, "--scenario", "plain")).To(Succeed())
		Expect(requests.Load()).To(BeEquivalentTo(1))
		Expect(out.String()).To(ContainSubstring("=== Test 1: Without thinking ==="))
		Expect(out.String()).NotTo(ContainSubstring("With thinking enabled"))
	})

	It("rejects unknown scenarios", func() {
		err := execute("--url", upstream.URL, "--scenario", "tools")
		Expect(err).To(MatchError(ContainSubstring(`unknown scenario: "tools"`)))
		Expect(requests.Load()).To(BeEquivalentTo(0))
	})

	It("passes the thinking check when thinking is toggled correctly", func() {
		Expect(execute("--url", upstream.URL, "--expect-thinking")).To(Succeed())
	})

	It("fails the thinking check when the endpoint ignores thinking", func() {
		ignore.Store(true)
		err := execute("--url", upstream.URL, "--expect-thinking")
		Expect(err).To(MatchError(ContainSubstring("thinking check failed")))
	})

	It("does not fail without --expect-thinking", func() {
		ignore.Store(true)
		Expect(execute("--url", upstream.URL)).To(Succeed())
	})

	It("does not fail when the endpoint is unreachable", func() {
		dead := httptest.NewServer(http.NotFoundHandler())
		url := dead.URL
		dead.Close()

		Expect(execute("--url", url)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Error: "))
	})

	It("reads the endpoint from config.toml", func() {
		Expect(os.MkdirAll(configDir, 0o755)).To(Succeed())
		content := fmt.Sprintf("[endpoint]\nurl = %q\n", upstream.URL)
		Expect(os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(content), 0o600)).To(Succeed())

		Expect(execute()).To(Succeed())
		Expect(requests.Load()).To(BeEquivalentTo(2))
	})

	It("records raw streams and a JSON log", func() {
		recordDir := filepath.Join(GinkgoT().TempDir(), "records")
		Expect(execute("--url", upstream.URL, "--record", recordDir)).To(Succeed())

		streams, err := filepath.Glob(filepath.Join(recordDir, "*.sse"))
		Expect(err).NotTo(HaveOccurred())
		Expect(streams).To(HaveLen(2))

		thinking, err := filepath.Glob(filepath.Join(recordDir, "thinking-*.sse"))
		Expect(err).NotTo(HaveOccurred())
		Expect(thinking).To(HaveLen(1))
		raw, err := os.ReadFile(thinking[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(Equal(thinkingStream))

		log, err := os.ReadFile(filepath.Join(recordDir, "thinkprobe.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(log)).To(ContainSubstring(`"msg":"probing endpoint"`))
		Expect(string(log)).NotTo(ContainSubstring(`"source":`))
	})

	It("adds caller locations to the JSON log with --debug", func() {
		recordDir := filepath.Join(GinkgoT().TempDir(), "records")
		Expect(execute("--url", upstream.URL, "--record", recordDir, "--debug")).To(Succeed())

		log, err := os.ReadFile(filepath.Join(recordDir, "thinkprobe.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(log)).To(ContainSubstring(`"msg":"scenario finished"`))
		Expect(string(log)).To(ContainSubstring(`"source":{"function":`))
	})

	It("rejects an invalid timeout", func() {
		err := execute("--url", upstream.URL, "--timeout", "soon")
		Expect(err).To(MatchError(ContainSubstring("invalid endpoint.timeout")))
	})
})
