package catalog

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/mxpv/pcasts/pkg/model"
)

var (
	subscriptionHeader = []string{"id", "url", "rss_url", "title"}
	episodeHeader      = []string{"guid", "title", "pub_date", "link", "podcast", "podcast_id"}
)

// rowReader yields data rows, skipping a leading header row.
type rowReader struct {
	csv    *csv.Reader
	header []string
	line   int
}

func newRowReader(r io.Reader, header []string) *rowReader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	return &rowReader{csv: reader, header: header}
}

func (r *rowReader) next() ([]string, error) {
	for {
		record, err := r.csv.Read()
		if err == io.EOF {
			return nil, io.EOF
		}

		r.line++

		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, errors.Wrapf(model.ErrSerialization, "line %d: %v", r.line, err)
			}
			return nil, errors.Wrap(err, "failed to read catalog")
		}

		if r.line == 1 && isHeader(record, r.header) {
			continue
		}

		return record, nil
	}
}

// isHeader matches both the current header and its shorter legacy forms.
func isHeader(record, header []string) bool {
	if len(record) == 0 || len(record) > len(header) {
		return false
	}

	for i, field := range record {
		if field != header[i] {
			return false
		}
	}

	return true
}

func decodeSubscription(record []string) (model.Subscription, error) {
	if len(record) != len(subscriptionHeader) {
		return model.Subscription{}, errors.Wrapf(model.ErrSerialization, "expected %d fields, got %d", len(subscriptionHeader), len(record))
	}

	id, err := strconv.ParseUint(record[0], 10, 64)
	if err != nil {
		return model.Subscription{}, errors.Wrapf(model.ErrSerialization, "invalid id %q", record[0])
	}

	return model.Subscription{
		ID:      id,
		SiteURL: record[1],
		FeedURL: record[2],
		Title:   record[3],
	}, nil
}

func encodeSubscription(sub model.Subscription) []string {
	return []string{
		strconv.FormatUint(sub.ID, 10),
		sub.SiteURL,
		sub.FeedURL,
		sub.Title,
	}
}

// decodeEpisode accepts rows with and without the trailing podcast_id column.
// Rows without it belong to fallbackID.
func decodeEpisode(record []string, fallbackID uint64) (model.Episode, error) {
	episode := model.Episode{SubscriptionID: fallbackID}

	switch len(record) {
	case len(episodeHeader):
		id, err := strconv.ParseUint(record[5], 10, 64)
		if err != nil {
			return model.Episode{}, errors.Wrapf(model.ErrSerialization, "invalid podcast id %q", record[5])
		}
		episode.SubscriptionID = id
	case len(episodeHeader) - 1:
	default:
		return model.Episode{}, errors.Wrapf(model.ErrSerialization, "expected %d fields, got %d", len(episodeHeader), len(record))
	}

	episode.GUID = record[0]
	episode.Title = record[1]
	episode.PubDate = record[2]
	episode.Link = record[3]
	episode.SubscriptionTitle = record[4]

	return episode, nil
}

func encodeEpisode(episode model.Episode) []string {
	return []string{
		episode.GUID,
		episode.Title,
		episode.PubDate,
		episode.Link,
		episode.SubscriptionTitle,
		strconv.FormatUint(episode.SubscriptionID, 10),
	}
}

func writeRows(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)

	if header != nil {
		if err := writer.Write(header); err != nil {
			return errors.Wrap(err, "failed to write header")
		}
	}

	if err := writer.WriteAll(rows); err != nil {
		return errors.Wrap(err, "failed to write rows")
	}

	return nil
}
