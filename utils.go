package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/fatih/color"
	"github.com/op/go-logging"

	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/stdlib"
	"github.com/magistermaks/sequensa-sub000/vm"
)

var log = logging.MustGetLogger("sequensa")

var (
	errorText   = color.New(color.FgRed).SprintFunc()
	warningText = color.New(color.FgYellow).SprintFunc()
	resultText  = color.New(color.FgCyan).SprintFunc()
)

// setupLogging installs the stderr logging backend; verbose mode lowers
// the threshold to DEBUG.
func setupLogging(verbose bool) {
	format := logging.MustStringFormatter(`%{level:.4s} %{message}`)
	backend := logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), format)
	leveled := logging.AddModuleLevel(backend)

	if verbose {
		leveled.SetLevel(logging.DEBUG, "")
	} else {
		leveled.SetLevel(logging.INFO, "")
	}

	logging.SetBackend(leveled)
}

// apiVersion is the version of this runtime as a semantic version.
func apiVersion() semver.Version {
	return semver.Version{
		Major: seq.APIVersionMajor,
		Minor: seq.APIVersionMinor,
		Patch: seq.APIVersionPatch,
	}
}

// buildHeaderMap assembles the well-known header properties for a fresh
// build.
func buildHeaderMap(natives []string) map[string]string {
	data := map[string]string{
		"api":  seq.APIName,
		"std":  seq.APIStandard,
		"sys":  runtime.GOOS,
		"time": strconv.FormatInt(time.Now().Unix(), 10),
	}

	if len(natives) > 0 {
		data["load"] = strings.Join(natives, "\x00")
	}

	return data
}

// loadHeader parses the file header at the reader position.
func loadHeader(reader *seq.BufferReader) (*seq.FileHeader, bool) {
	header, err := reader.Header()
	if err != nil {
		fmt.Println(errorText("Error! Failed to parse file header, invalid signature!"))
		return nil, false
	}
	return header, true
}

// validateVersion checks the bytecode version against this runtime.
// A major/minor mismatch stops execution unless forced; a patch mismatch
// prints a warning and lets execution continue.
func validateVersion(header *seq.FileHeader, force bool) bool {

	expected := apiVersion()
	actual, err := semver.Parse(header.VersionString())
	if err != nil {
		fmt.Println(errorText("Error! Invalid Sequensa version!"))
		return force
	}

	if actual.Major != expected.Major || actual.Minor != expected.Minor {
		fmt.Println(errorText("Error! Invalid Sequensa version!"))
		fmt.Println("Program expected:", header.VersionString())

		if !force {
			fmt.Println("To force Sequensa to continue run again with '-force'.")
			return false
		}
		fmt.Println("Sequensa forced to continue, issues may occur!")
		return true
	}

	if actual.Patch != expected.Patch {
		fmt.Println(warningText("Warning! Unaligned Sequensa patch version!"))
		log.Debugf("program expected: %s", header.VersionString())
	}

	return true
}

// loadNativeLibs injects every native module requested by the header.
func loadNativeLibs(exe *vm.Executor, header *seq.FileHeader) bool {

	for _, name := range header.ValueTable("load") {
		if err := stdlib.Load(exe, header, name); err != nil {
			fmt.Println(errorText(fmt.Sprintf("Unable to find native library: '%s'!", name)))
			return false
		}
		log.Debugf("loaded native library: '%s'", name)
	}

	return true
}

// posixTimeToDate renders POSIX seconds the way the info command prints
// build times.
func posixTimeToDate(seconds int64) string {
	return time.Unix(seconds, 0).UTC().Format("2006-01-02 15:04:05 MST")
}
