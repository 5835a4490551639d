package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ankitni/charchat/internal/persona"
)

var personaCmd = &cobra.Command{
	Use:   "persona",
	Short: "Manage persona definitions",
}

var personaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		personas, err := a.personas.List()
		if err != nil {
			return err
		}
		bold := color.New(color.Bold)
		for _, p := range personas {
			bold.Printf("%s", p.Name)
			fmt.Printf("  (%s)\n", p.ID)
			if p.BriefDescription != "" {
				fmt.Printf("    %s\n", p.BriefDescription)
			}
		}
		return nil
	},
}

var personaShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one persona in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		p, err := a.personas.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Name:        %s\n", p.Name)
		fmt.Printf("ID:          %s\n", p.ID)
		fmt.Printf("Personality: %s\n", p.Personality)
		fmt.Printf("Backstory:   %s\n", p.Backstory)
		if p.AvatarURL != "" {
			fmt.Printf("Avatar:      %s\n", p.AvatarURL)
		}
		for i, m := range p.Memories {
			fmt.Printf("Memory %d:    %s\n", i, m)
		}
		return nil
	},
}

var (
	createBrief       string
	createPersonality string
	createBackstory   string
	createAvatar      string
)

var personaCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		p, err := a.personas.Create(args[0], createBrief, createPersonality, createBackstory, createAvatar)
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var personaUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a persona's fields (its id never changes)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		p, err := a.personas.Update(args[0], updateFields(cmd.Flags()))
		if err != nil {
			return err
		}
		fmt.Printf("updated %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

// updateFields merges only the flags the user actually set; an untouched
// flag leaves the stored value alone, an explicit empty value clears it.
func updateFields(flags *pflag.FlagSet) persona.Fields {
	var f persona.Fields
	set := func(name string, dst **string) {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			*dst = &v
		}
	}
	set("name", &f.Name)
	set("brief", &f.BriefDescription)
	set("personality", &f.Personality)
	set("backstory", &f.Backstory)
	set("avatar", &f.AvatarURL)
	return f
}

func addPersonaFieldFlags(flags *pflag.FlagSet) {
	flags.String("name", "", "new display name")
	flags.String("brief", "", "one-line description")
	flags.String("personality", "", "personality traits")
	flags.String("backstory", "", "background story")
	flags.String("avatar", "", "avatar URL")
}

var personaDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a persona (its transcripts are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := a.personas.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

var personaMemoryCmd = &cobra.Command{
	Use:   "memory <id> (add <text> | remove <index>)",
	Short: "Add or remove a persona memory",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		id, action, value := args[0], args[1], args[2]
		switch action {
		case "add":
			if _, err := a.personas.AddMemory(id, value); err != nil {
				return err
			}
		case "remove":
			idx, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			if _, err := a.personas.RemoveMemory(id, idx); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown action %q (want add or remove)", action)
		}
		return nil
	},
}

var personaAvatarCmd = &cobra.Command{
	Use:   "avatar <id> <image-path>",
	Short: "Attach an avatar image to a persona",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		p, err := a.personas.AttachAvatar(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("avatar set: %s\n", p.AvatarURL)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List user profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		profiles, err := a.personas.Profiles()
		if err != nil {
			return err
		}
		for _, p := range profiles {
			fmt.Printf("%s (%s)\n", p.Name, p.ID)
		}
		return nil
	},
}

func init() {
	personaCreateCmd.Flags().StringVar(&createBrief, "brief", "", "one-line description")
	personaCreateCmd.Flags().StringVar(&createPersonality, "personality", "", "personality traits")
	personaCreateCmd.Flags().StringVar(&createBackstory, "backstory", "", "background story")
	personaCreateCmd.Flags().StringVar(&createAvatar, "avatar", "", "avatar URL")
	addPersonaFieldFlags(personaUpdateCmd.Flags())

	personaCmd.AddCommand(personaListCmd, personaShowCmd, personaCreateCmd, personaUpdateCmd, personaDeleteCmd, personaMemoryCmd, personaAvatarCmd)
	rootCmd.AddCommand(personaCmd, profileListCmd)
}
