package extractor

// Field names a piece of video metadata pulled from the page state.
type Field string

const (
	Title           Field = "title"
	ChannelName     Field = "channelName"
	SubscriberCount Field = "subscriberCount"
	ViewCount       Field = "viewCount"
	LikeCount       Field = "likeCount"
	CommentCount    Field = "commentCount"
	PublishDate     Field = "publishDate"
)

// RawFields is a sparse mapping of field to raw page text.
// A missing key means the field is absent; empty strings are never stored.
type RawFields map[Field]string

// Get returns the raw value of f and whether it is present.
func (rf RawFields) Get(f Field) (string, bool) {
	v, ok := rf[f]
	return v, ok && v != ""
}

// Has reports whether f is present.
func (rf RawFields) Has(f Field) bool {
	_, ok := rf.Get(f)
	return ok
}

// fill stores v under f unless f is already set or v is empty.
func (rf RawFields) fill(f Field, v string) {
	if v == "" || rf.Has(f) {
		return
	}
	rf[f] = v
}
