package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Environment passed to extensions. The configuration variables are the ones
// read by config.Load, so an extension loading the configuration sees the
// same store as dvt.
const (
	EnvConfig   = "DEVTRACK_CONFIG"
	EnvDataPath = "DEVTRACK_DATA_PATH"
	EnvBackend  = "DEVTRACK_DATA_BACKEND"
	EnvCurrency = "DEVTRACK_CURRENCY"
	EnvVerbose  = "DEVTRACK_VERBOSE"
)

// RunExtension attempts to find and execute an external dvt-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	externalCmdName := "dvt-" + subcommand

	lp, err := exec.LookPath(externalCmdName)
	if err != nil {
		if *Verbose {
			log.Printf("external command %q not found in PATH: %v", externalCmdName, err)
		}
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr

	// Pass global flags as environment variables
	cmd.Env = os.Environ()
	if *configFile != "" {
		cmd.Env = append(cmd.Env, EnvConfig+"="+*configFile)
	}
	if *dataFile != "" {
		cmd.Env = append(cmd.Env, EnvBackend+"=file", EnvDataPath+"="+*dataFile)
	}
	if *defaultCurrency != "" {
		cmd.Env = append(cmd.Env, EnvCurrency+"="+strings.ToUpper(*defaultCurrency))
	}
	cmd.Env = append(cmd.Env, EnvVerbose+"="+strconv.FormatBool(*Verbose))

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", externalCmdName, err)
		return true, 1
	}
	return true, 0
}
