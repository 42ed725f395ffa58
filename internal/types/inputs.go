package types

// ImageUpload is an uploaded file read into memory.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// PostInput carries the fields of a new or edited post.
type PostInput struct {
	Content string
	Image   *ImageUpload
}

// ProfileUpdate carries the editable fields of a profile. A nil Picture keeps
// the current one.
type ProfileUpdate struct {
	Bio     string
	Picture *ImageUpload
}
