package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/looper/internal/fault"
	"github.com/roach88/looper/internal/signature"
)

// SignOptions holds flags shared by the sign and verify commands.
type SignOptions struct {
	*RootOptions
	Fields    signature.Fields
	Signature string
}

// SignResult is the output of the sign command.
type SignResult struct {
	Canonical string `json:"canonical"`
	Signature string `json:"signature"`
}

// Text renders the signature alone so it can be captured by a shell.
func (r SignResult) Text() string { return r.Signature }

// VerifyResult is the output of the verify command.
type VerifyResult struct {
	Valid bool `json:"valid"`
}

// Text renders the verdict.
func (r VerifyResult) Text() string {
	if r.Valid {
		return "✓ signature valid"
	}
	return "✗ signature invalid"
}

func addFieldFlags(cmd *cobra.Command, f *signature.Fields) {
	cmd.Flags().StringVar(&f.Date, "date", "", "puzzle date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.PuzzleID, "puzzle-id", "", "puzzle id, e.g. matrix-2026-02-14")
	cmd.Flags().IntVar(&f.Score, "score", 0, "score")
	cmd.Flags().IntVar(&f.TimeTaken, "time", 0, "seconds taken")
	cmd.Flags().IntVar(&f.HintsUsed, "hints", 0, "hints used")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("puzzle-id")
}

// NewSignCommand creates the sign command.
func NewSignCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a score with the configured HMAC secret",
		Long: `Sign "date|puzzleId|score|timeTaken|hintsUsed" with HMAC-SHA256.

The secret comes from LOOPER_HMAC_SECRET or the config file.

Example:
  looper sign --date 2026-02-14 --puzzle-id matrix-2026-02-14 --score 250 --time 45 --hints 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(opts, cmd)
		},
	}
	addFieldFlags(cmd, &opts.Fields)
	return cmd
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SignOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a score signature",
		Long: `Verify a hex HMAC-SHA256 score signature. Exits 1 when it does not match.

Example:
  looper verify --date 2026-02-14 --puzzle-id matrix-2026-02-14 --score 250 --time 45 --hints 1 --signature f283...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}
	addFieldFlags(cmd, &opts.Fields)
	cmd.Flags().StringVar(&opts.Signature, "signature", "", "hex signature to check")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

func runSign(opts *SignOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	signer, err := signerFor(opts.RootOptions, cmd)
	if err != nil {
		return f.Fail(err)
	}
	return f.Success(SignResult{
		Canonical: signature.Canonical(opts.Fields),
		Signature: signer.Sign(opts.Fields),
	})
}

func runVerify(opts *SignOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	signer, err := signerFor(opts.RootOptions, cmd)
	if err != nil {
		return f.Fail(err)
	}
	if !signer.Verify(opts.Fields, opts.Signature) {
		return f.Fail(fault.Signature("verify"))
	}
	return f.Success(VerifyResult{Valid: true})
}

func signerFor(opts *RootOptions, cmd *cobra.Command) (*signature.Signer, error) {
	env, err := loadEnv(opts, cmd)
	if err != nil {
		return nil, err
	}
	signer, err := env.signer()
	if err != nil {
		return nil, fmt.Errorf("signer: %w", err)
	}
	return signer, nil
}
