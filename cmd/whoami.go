package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// whoamiCmd は、現在のセッション状態とユーザー情報を表示するのだ。
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "ログイン中のユーザー情報を表示するのだ。",
	RunE:  whoamiCommand,
}

func whoamiCommand(cmd *cobra.Command, args []string) error {
	sm, err := newSessionManager()
	if err != nil {
		return err
	}

	if !sm.IsAuthenticated() {
		return fmt.Errorf("ログインしていないのだ。`ap-repair-go login` を実行してほしいのだ")
	}

	user, _ := sm.CurrentUser()
	fmt.Printf("Name:    %s\n", user.Name)
	if user.Picture != "" {
		fmt.Printf("Picture: %s\n", user.Picture)
	}
	return nil
}
