package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"rigup/internal/sysinfo"
	"rigup/internal/tui"
)

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the detected system profile",
		RunE:  runProfile,
	}
}

func runProfile(cmd *cobra.Command, _ []string) error {
	profile, err := sysinfo.Detect()
	if err != nil {
		return err
	}

	if outputJSON {
		payload := struct {
			Distro       string `json:"distro"`
			Manager      string `json:"package_manager"`
			Arch         string `json:"arch"`
			XArch        string `json:"xarch"`
			Home         string `json:"home"`
			Shell        string `json:"shell"`
			ShellProfile string `json:"shell_profile"`
		}{
			Distro:       profile.DistroID,
			Manager:      profile.Manager.String(),
			Arch:         profile.Arch,
			XArch:        profile.XArch,
			Home:         profile.Home,
			Shell:        profile.Shell,
			ShellProfile: profile.ShellProfile,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode profile json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintf(w, "Distro\t%s\n", tui.NonEmptyOrDash(profile.DistroID))
	fmt.Fprintf(w, "Package manager\t%s\n", profile.Manager)
	fmt.Fprintf(w, "Arch\t%s\n", profile.Arch)
	fmt.Fprintf(w, "Kernel arch\t%s\n", profile.XArch)
	fmt.Fprintf(w, "Home\t%s\n", profile.Home)
	fmt.Fprintf(w, "Shell\t%s\n", tui.NonEmptyOrDash(profile.Shell))
	fmt.Fprintf(w, "Shell profile\t%s\n", profile.ShellProfile)
	w.Flush()

	if profile.Manager == sysinfo.ManagerUnknown {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no supported package manager found (apt, dnf, pacman); package entries will not resolve")
	}
	return nil
}
