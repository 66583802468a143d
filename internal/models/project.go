package models

// Project represents a portfolio project
type Project struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Icon        string   `json:"icon" yaml:"icon"`
	Description string   `json:"description" yaml:"description"`
	Tech        []string `json:"tech" yaml:"tech"`
	Points      []string `json:"points" yaml:"points"`
	GitHubURL   string   `json:"github_url,omitempty" yaml:"github"`
	LiveURL     string   `json:"live_url,omitempty" yaml:"live"`
}

// TechEntry is one badge in the tech stack list
type TechEntry struct {
	Name string `json:"name" yaml:"name"`
	Logo string `json:"logo" yaml:"logo"`
}

// Track is one item of the fixed playlist
type Track struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Artist string `json:"artist,omitempty" yaml:"artist"`
	Src    string `json:"src" yaml:"src"`
}

// Profile holds the header, about and footer copy
type Profile struct {
	Name     string   `json:"name" yaml:"name"`
	Role     string   `json:"role" yaml:"role"`
	Location string   `json:"location" yaml:"location"`
	Email    string   `json:"email" yaml:"email"`
	GitHub   string   `json:"github" yaml:"github"`
	LinkedIn string   `json:"linkedin" yaml:"linkedin"`
	Photo    string   `json:"photo" yaml:"photo"`
	About    []string `json:"about" yaml:"about"`
	Footer   string   `json:"footer" yaml:"footer"`
}

// Site wraps everything rendered on the page
type Site struct {
	Profile   Profile     `json:"profile" yaml:"profile"`
	TechStack []TechEntry `json:"tech_stack" yaml:"tech_stack"`
	Projects  []Project   `json:"projects" yaml:"projects"`
	Tracks    []Track     `json:"tracks" yaml:"tracks"`
}
