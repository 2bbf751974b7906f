package cliwalletcreate

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/icrc99-bridge/nft-bridge/common"
)

type walletCmdResult struct {
	WalletType     string `json:"type"`
	PrivateKey     string `json:"privateKey,omitempty"`
	PublicKey      string `json:"publicKey"`
	Address        string `json:"address"`
	showPrivateKey bool
}

func (r walletCmdResult) GetOutput() string {
	var (
		buffer bytes.Buffer
		vals   []string
	)

	if r.showPrivateKey && r.PrivateKey != "" {
		vals = append(vals, fmt.Sprintf("Private Key|%s", r.PrivateKey))
	}

	vals = append(vals,
		fmt.Sprintf("Public Key|%s", r.PublicKey),
		fmt.Sprintf("Address|%s", r.Address))

	buffer.WriteString("\n[SECRETS ")
	buffer.WriteString(strings.ToUpper(r.WalletType))
	buffer.WriteString("]\n")
	buffer.WriteString(common.FormatKV(vals))
	buffer.WriteString("\n")

	return buffer.String()
}
