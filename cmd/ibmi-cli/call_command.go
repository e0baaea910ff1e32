package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jguillaumes/go-ibmi/ibmi"
)

var callCommandCmd = &cobra.Command{
	Use:   "call-command <CL command string>",
	Short: "run a CL command on the Remote Command channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := connect()
		if err != nil {
			return err
		}
		defer sess.Disconnect()

		var msgs ibmi.CallMessages
		code, err := sess.CallCommand(args[0], &msgs)
		if err != nil {
			return err
		}

		log.Infof("result code: 0x%04X", code)
		for _, m := range msgs.All() {
			fmt.Printf("%s (severity %d): %s\n", m.MessageID, m.Severity, m.MessageText)
		}
		return nil
	},
}
