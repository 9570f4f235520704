// cmd/setup/setup.go

package setup

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/netbootworks/ztpctl/pkg/setup"
	"github.com/netbootworks/ztpctl/pkg/sources"
	"github.com/netbootworks/ztpctl/pkg/ztp_cli"
	"github.com/netbootworks/ztpctl/pkg/ztp_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

var (
	flagUpgrade        bool
	flagSkipStart      bool
	flagNonInteractive bool
	flagConfigDir      string
	flagQuadletDir     string
	flagBackupDir      string

	flagDomain          string
	flagIPv4            string
	flagIPv6            string
	flagNetwork         string
	flagDNS             []string
	flagHTTPOnly        bool
	flagHTTPSPort       int
	flagCVAddr          string
	flagEnrollmentToken string
	flagCVProxy         string
	flagEOSImageURL     string
	flagNTPServer       string
	flagTimezone        string
)

// SetupCmd installs or reconciles the ZTP bootstrap deployment.
var SetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install or reconcile the ZTP bootstrap deployment",
	Long: `Setup discovers the configuration left behind by a previous installation,
merges it with flags and prompts, backs up the old install, and regenerates
every artifact before restarting the pod.

With --upgrade the run is non-interactive: discovered values feed the new
configuration unchanged and a failed backup aborts the run.`,
	RunE: ztp_cli.Wrap(runSetup),
}

func init() {
	f := SetupCmd.Flags()
	f.BoolVar(&flagUpgrade, "upgrade", false, "non-interactive reinstall from discovered configuration")
	f.BoolVar(&flagSkipStart, "skip-start", false, "apply configuration but leave services stopped")
	f.BoolVar(&flagNonInteractive, "non-interactive", false, "never prompt; missing values stay empty")
	f.StringVar(&flagConfigDir, "config-dir", "", "installation directory (default /opt/containerdata/ztpbootstrap)")
	f.StringVar(&flagQuadletDir, "quadlet-dir", "", "quadlet unit directory (default /etc/containers/systemd)")
	f.StringVar(&flagBackupDir, "backup-dir", "", "backup archive directory")

	f.StringVar(&flagDomain, "domain", "", "server domain name")
	f.StringVar(&flagIPv4, "ipv4", "", "static IPv4 address for the pod")
	f.StringVar(&flagIPv6, "ipv6", "", "static IPv6 address for the pod")
	f.StringVar(&flagNetwork, "network", "", "podman network name")
	f.StringSliceVar(&flagDNS, "dns", nil, "DNS server (repeatable, max 2)")
	f.BoolVar(&flagHTTPOnly, "http-only", false, "serve over plain HTTP, no TLS")
	f.IntVar(&flagHTTPSPort, "https-port", 0, "HTTPS listen port")
	f.StringVar(&flagCVAddr, "cv-addr", "", "CVaaS address")
	f.StringVar(&flagEnrollmentToken, "enrollment-token", "", "CVaaS enrollment token")
	f.StringVar(&flagCVProxy, "cv-proxy", "", "proxy URL for CVaaS traffic")
	f.StringVar(&flagEOSImageURL, "eos-image-url", "", "EOS image download URL")
	f.StringVar(&flagNTPServer, "ntp-server", "", "NTP server handed to switches")
	f.StringVar(&flagTimezone, "timezone", "", "container timezone")
}

func runSetup(rc *ztp_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	opts := setup.Options{
		Upgrade:     flagUpgrade,
		SkipStart:   flagSkipStart,
		Interactive: !flagNonInteractive && !flagUpgrade,
		ConfigDir:   flagConfigDir,
		QuadletDir:  flagQuadletDir,
		BackupDir:   flagBackupDir,
		Overrides:   overridesFromFlags(cmd),
	}

	result, err := setup.Run(rc, opts)
	if result != nil {
		otelzap.Ctx(rc.Ctx).Info("Setup finished",
			zap.String("final_state", string(result.Machine.Current)),
			zap.Strings("synthesized_units", result.Synthesized))
	}
	if err != nil {
		return err
	}

	fmt.Println("Setup complete.")
	if result.Backup != nil {
		fmt.Printf("Previous installation backed up as %s\n", result.Backup.Timestamp)
	}
	for _, unit := range result.Synthesized {
		fmt.Printf("Note: %s was synthesized manually; the quadlet generator did not produce it\n", unit)
	}
	return nil
}

// overridesFromFlags collects only the flags the operator actually set, so
// unset flags never mask discovered values.
func overridesFromFlags(cmd *cobra.Command) map[sources.FieldName]string {
	o := make(map[sources.FieldName]string)

	set := func(flag string, field sources.FieldName, value string) {
		if cmd.Flags().Changed(flag) {
			o[field] = value
		}
	}
	set("domain", sources.FieldDomain, flagDomain)
	set("ipv4", sources.FieldIPv4, flagIPv4)
	set("ipv6", sources.FieldIPv6, flagIPv6)
	set("network", sources.FieldNetwork, flagNetwork)
	set("cv-addr", sources.FieldCVAddr, flagCVAddr)
	set("enrollment-token", sources.FieldEnrollmentToken, flagEnrollmentToken)
	set("cv-proxy", sources.FieldCVProxy, flagCVProxy)
	set("eos-image-url", sources.FieldEOSImageURL, flagEOSImageURL)
	set("ntp-server", sources.FieldNTPServer, flagNTPServer)
	set("timezone", sources.FieldTimezone, flagTimezone)
	if cmd.Flags().Changed("http-only") {
		o[sources.FieldHTTPOnly] = strconv.FormatBool(flagHTTPOnly)
	}
	if cmd.Flags().Changed("https-port") {
		o[sources.FieldHTTPSPort] = strconv.Itoa(flagHTTPSPort)
	}
	if cmd.Flags().Changed("dns") {
		if len(flagDNS) > 0 {
			o[sources.FieldDNS1] = flagDNS[0]
		}
		if len(flagDNS) > 1 {
			o[sources.FieldDNS2] = flagDNS[1]
		}
	}
	return o
}
