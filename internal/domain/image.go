package domain

// ImageRef is one entry of a listing's working image set: either a RemoteImage
// that is already persisted or a LocalImage staged by the client.
type ImageRef interface {
	imageRef()
}

// RemoteImage is an image already stored in object storage.
type RemoteImage struct {
	URL string
}

// LocalImage is a client-staged image that has not been uploaded yet.
// Handle names one staged file within a request; Size is the byte size reported by the client.
type LocalImage struct {
	Handle      string
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

func (RemoteImage) imageRef() {}
func (LocalImage) imageRef()  {}
