package cmd

// stepForJSON is a struct used for marshaling a planned task to JSON for machine-readable output.
type stepForJSON struct {
	Task        string   `json:"task"`
	Description string   `json:"description"`
	Details     []string `json:"details"`
}

// taskForOutput describes a catalog task for the list command.
type taskForOutput struct {
	ID       string             `json:"id" yaml:"id"`
	Name     string             `json:"name" yaml:"name"`
	Selected bool               `json:"selected" yaml:"selected"`
	After    []string           `json:"after,omitempty" yaml:"after,omitempty"`
	Commands []commandForOutput `json:"commands" yaml:"commands"`
}

type commandForOutput struct {
	Run    string `json:"run" yaml:"run"`
	Mode   string `json:"mode" yaml:"mode"`
	Stdin  string `json:"stdin,omitempty" yaml:"stdin,omitempty"`
	Writes string `json:"writes,omitempty" yaml:"writes,omitempty"`
}
