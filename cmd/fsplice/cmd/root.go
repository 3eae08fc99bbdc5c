// Package cmd implements the fsplice command line tool.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"gopkg.in/yaml.v3"

	"github.com/ungerik/go-splice"
	"github.com/ungerik/go-splice/filelock"
	"github.com/ungerik/go-splice/sftpfs"
)

// SFTPPasswordEnv is the environment variable
// holding the password for --sftp connections.
const SFTPPasswordEnv = "FSPLICE_SFTP_PASSWORD"

// options holds the persistent flags shared by all commands
type options struct {
	configFile      string
	bufferSize      byteSizeValue
	charset         string
	parents         bool
	stagingDir      string
	separator       separatorValue
	lock            bool
	verbose         bool
	sftpAddress     string
	knownHosts      string
	insecureHostKey bool
}

// NewRootCmd returns the fsplice root command with all sub-commands.
func NewRootCmd() *cobra.Command {
	o := new(options)

	rootCmd := &cobra.Command{
		Use:   "fsplice",
		Short: "Edit byte ranges and lines of files in place",
		Long: `fsplice inserts, replaces and appends bytes and lines of files
without reading whole files into memory and reads lines
starting at arbitrary byte offsets.

Data arguments that are omitted are read from stdin.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.configFile, "config", "", "YAML config file")
	flags.Var(&o.bufferSize, "buffer-size", "buffer size like 64KiB, bigger file parts are moved via staging files")
	flags.StringVar(&o.charset, "charset", "", "IANA charset of lines (default UTF-8)")
	flags.BoolVarP(&o.parents, "parents", "p", false, "create missing parent directories")
	flags.StringVar(&o.stagingDir, "staging-dir", "", "directory for staging files")
	flags.Var(&o.separator, "separator", "line separator for new lines: LF, CR or CRLF (default: trailing separator of the file)")
	flags.BoolVar(&o.lock, "lock", false, "lock the file while editing it (local files only)")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log splice strategies and connections to stderr")
	flags.StringVar(&o.sftpAddress, "sftp", "", "edit files on an SFTP server user@host[:port], password from $"+SFTPPasswordEnv)
	flags.StringVar(&o.knownHosts, "known-hosts", defaultKnownHosts(), "SSH known_hosts file for --sftp")
	flags.BoolVar(&o.insecureHostKey, "insecure-ignore-host-key", false, "accept any SSH host key for --sftp")

	rootCmd.AddCommand(
		newAppendCmd(o),
		newInsertCmd(o),
		newReplaceCmd(o),
		newAppendLineCmd(o),
		newInsertLinesCmd(o),
		newReadLineCmd(o),
		newLinesCmd(o),
		newSeparatorCmd(o),
	)
	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "fsplice:", err)
		return 1
	}
	return 0
}

func defaultKnownHosts() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "known_hosts")
}

// config loads the config file if set and applies the flags on top of it.
func (o *options) config(stderr io.Writer) (splice.Config, error) {
	config := splice.DefaultConfig()
	if o.configFile != "" {
		data, err := os.ReadFile(o.configFile)
		if err != nil {
			return config, fmt.Errorf("can't read config file: %w", err)
		}
		if err = yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("can't parse config file %s: %w", o.configFile, err)
		}
	}
	if o.bufferSize != 0 {
		config.BufferSize = int(o.bufferSize)
	}
	if o.charset != "" {
		config.Charset = o.charset
	}
	if o.parents {
		config.CreateParentDirs = true
	}
	if o.stagingDir != "" {
		config.StagingDir = o.stagingDir
	}
	if o.verbose {
		config.Logger = log.New(stderr, "fsplice: ", log.LstdFlags)
	}
	return config, config.Validate()
}

func (o *options) fileSystem(ctx context.Context, logger splice.Logger) (splice.FileSystem, func() error, error) {
	if o.sftpAddress == "" {
		return splice.Local, func() error { return nil }, nil
	}
	password := os.Getenv(SFTPPasswordEnv)
	if password == "" {
		return nil, nil, fmt.Errorf("$%s not set for --sftp", SFTPPasswordEnv)
	}
	hostKeyCallback, err := o.hostKeyCallback()
	if err != nil {
		return nil, nil, err
	}
	sftpFS, err := sftpfs.Dial(ctx, o.sftpAddress, sftpfs.Password(password), hostKeyCallback, logger)
	if err != nil {
		return nil, nil, err
	}
	return sftpFS, sftpFS.Close, nil
}

func (o *options) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if o.insecureHostKey {
		return sftpfs.AcceptAnyHostKey, nil
	}
	if o.knownHosts == "" {
		return nil, errors.New("--known-hosts or --insecure-ignore-host-key needed for --sftp")
	}
	callback, err := knownhosts.New(o.knownHosts)
	if err != nil {
		return nil, fmt.Errorf("can't load known hosts: %w", err)
	}
	return callback, nil
}

// run creates an engine from the options,
// locks filePath if requested and calls fn.
func (o *options) run(cmd *cobra.Command, filePath string, fn func(ctx context.Context, engine *splice.Engine) error) (err error) {
	ctx := cmd.Context()
	config, err := o.config(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	var connLogger splice.Logger
	if o.verbose {
		connLogger = config.Logger
	}
	fileSystem, closeFileSystem, err := o.fileSystem(ctx, connLogger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeFileSystem())
	}()

	engine, err := splice.NewEngine(fileSystem, config)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, engine.Close())
	}()

	if o.lock {
		if o.sftpAddress != "" {
			return errors.New("--lock only works with local files")
		}
		if config.CreateParentDirs {
			dir, _ := fileSystem.DirAndName(filePath)
			if err = fileSystem.MakeAllDirs(dir, 0); err != nil {
				return err
			}
		}
		var lock *filelock.Lock
		lock, err = filelock.Acquire(ctx, filePath)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, lock.Release())
		}()
	}

	return fn(ctx, engine)
}
