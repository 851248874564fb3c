package main

import (
	"github.com/spf13/cobra"
	"github.com/vitalvas/signgate/config"
	"github.com/vitalvas/signgate/signer"
)

type rootOptions struct {
	configPath string
	secretFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "signgate",
		Short:         "Ed25519 sign/verify gateway",
		Long:          "signgate answers POST /sign and POST /verify with an Ed25519 key derived from a secret.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.secretFile, "secret-file", "", "file containing the signing secret (overrides configuration)")

	cmd.AddCommand(
		newServeCmd(opts),
		newSignCmd(opts),
		newVerifyCmd(opts),
	)

	return cmd
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if o.secretFile != "" {
		cfg.SecretFile = o.secretFile
	}

	return cfg, nil
}

func newSigner(cfg config.Config) (*signer.Ed25519, error) {
	secret, err := cfg.Secret()
	if err != nil {
		return nil, err
	}

	return signer.NewEd25519(secret)
}
