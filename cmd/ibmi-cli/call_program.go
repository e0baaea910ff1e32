package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jguillaumes/go-ibmi/ibmi"
)

var (
	callProgramName    string
	callProgramLibrary string
)

var callProgramCmd = &cobra.Command{
	Use:   "call-program",
	Short: "call a no-argument program and report its result code and messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := connect()
		if err != nil {
			return err
		}
		defer sess.Disconnect()

		params := ibmi.NewProgramCallParameters()
		var msgs ibmi.CallMessages
		code, err := sess.CallProgram(callProgramName, callProgramLibrary, params, &msgs)
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

func init() {
	callProgramCmd.Flags().StringVar(&callProgramName, "name", "", "program name")
	callProgramCmd.Flags().StringVar(&callProgramLibrary, "library", "QSYS", "program library")
	if err := callProgramCmd.MarkFlagRequired("name"); err != nil {
		log.WithError(err).Fatal("mark flag required")
	}
}
