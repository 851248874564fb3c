package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vitalvas/signgate/gateway"
)

var errSignatureInvalid = errors.New("signature is invalid")

func newSignCmd(root *rootOptions) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign data with the configured key and print the hex signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := newOfflineDispatcher(root)
			if err != nil {
				return err
			}

			resp, _ := d.Dispatch(gateway.RouteSign, &gateway.RequestBody{Data: data})
			fmt.Fprintln(cmd.OutOrStdout(), resp.Result)

			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "data to sign")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newVerifyCmd(root *rootOptions) *cobra.Command {
	var data, signature string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a hex signature over data with the configured key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := newOfflineDispatcher(root)
			if err != nil {
				return err
			}

			resp, _ := d.Dispatch(gateway.RouteVerify, &gateway.RequestBody{Data: data, Signature: &signature})
			fmt.Fprintln(cmd.OutOrStdout(), resp.Result)

			if resp.Result != gateway.ResultValid {
				return errSignatureInvalid
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "data that was signed")
	cmd.Flags().StringVar(&signature, "signature", "", "hex-encoded signature")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("signature")

	return cmd
}

func newOfflineDispatcher(root *rootOptions) (*gateway.Dispatcher, error) {
	cfg, err := root.load()
	if err != nil {
		return nil, err
	}

	s, err := newSigner(cfg)
	if err != nil {
		return nil, err
	}

	return gateway.NewDispatcher(s, nil), nil
}
