package file

import (
	"eventky/internal/app/server/api/http/dto"
	"eventky/internal/domain/file"
	"eventky/internal/infrastructure/index"
)

type uploadInput struct {
	Body dto.Upload
}

type createdOutput struct {
	Body dto.Created
}

type idInput struct {
	ID string `path:"id" doc:"File id"`
}

type findInput struct {
	Owner string     `path:"owner" doc:"Owner id"`
	ID    string     `path:"id" doc:"File id"`
	Size  index.Size `query:"size" enum:"small,feed,main" default:"main" doc:"Preferred rendition for image_url"`
}

type fileView struct {
	URI      string    `json:"uri"`
	ID       string    `json:"id"`
	OwnerID  string    `json:"owner_id"`
	File     file.File `json:"file"`
	ImageURL string    `json:"image_url,omitempty" doc:"Static URL of an indexed rendition"`
}

type findOutput struct {
	Body fileView
}

type blobOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type emptyOutput struct{}
