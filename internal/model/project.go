package model

import "time"

// Project is a workspace partition for tasks and routines. It carries no
// scheduling behavior of its own.
type Project struct {
	ID          ProjectID `json:"id"`
	Name        string    `json:"name"`
	Emoji       string    `json:"emoji"`
	Color       string    `json:"color,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ProjectUpsert struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Emoji       string `json:"emoji" validate:"max=16"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
	Description string `json:"description" validate:"max=4000"`
}

func (in ProjectUpsert) Project() Project {
	emoji := in.Emoji
	if emoji == "" {
		emoji = "📁"
	}
	color := in.Color
	if color == "" {
		color = "#7c6ff7"
	}
	return Project{
		Name:        in.Name,
		Emoji:       emoji,
		Color:       color,
		Description: in.Description,
	}
}
