package util

import (
	"fmt"
	"log"
	"os"
	"path"
	"time"
)

var (
	logChannel = make(chan LogEntry, 100)
)

// LogEntry is one authenticated passthrough request, kept for server-side
// traffic auditing. Nothing in here ever leaves the server.
type LogEntry struct {
	Timestamp time.Time
	UserID    int64
	Method    string
	Endpoint  string
}

func EnqueueRequestLog(entry LogEntry) {
	select {
	case logChannel <- entry:
	default:
		// Auditing is best-effort; never block a request on a full channel.
	}
}

// DrainRequestLogs flushes everything queued so far into the day's CSV file.
// Called periodically from a background goroutine.
func DrainRequestLogs() {
	var prevTimestamp *time.Time
	dayEntries := []LogEntry{}

	ok := true
	var entry LogEntry
	for ok {
		select {
		case entry, ok = <-logChannel:
			if ok {
				if prevTimestamp == nil || datesAreEqual(entry.Timestamp, *prevTimestamp) {
					dayEntries = append(dayEntries, entry)
				} else {
					writeLogsToFile(*prevTimestamp, dayEntries)
					dayEntries = []LogEntry{entry}
				}
				prevTimestamp = &entry.Timestamp
			}
		default:
			ok = false
		}
		if !ok && len(dayEntries) > 0 {
			writeLogsToFile(*prevTimestamp, dayEntries)
		}
	}
}

func datesAreEqual(t1 time.Time, t2 time.Time) bool {
	d1, m1, y1 := t1.Date()
	d2, m2, y2 := t2.Date()
	return d1 == d2 && m1 == m2 && y1 == y2
}

func writeLogsToFile(date time.Time, entries []LogEntry) {
	filePath := path.Join("temp", "logs", fmt.Sprintf("%s.csv", date.Format("01-02-06")))
	if _, err := os.Stat(filePath); err != nil {
		os.MkdirAll(path.Join("temp", "logs"), 0755)
	}
	csvFile, err := os.OpenFile(filePath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		log.Printf("failed creating file: %s", err)
		return
	}
	defer csvFile.Close()

	for _, entry := range entries {
		csvFile.WriteString(fmt.Sprintf("%d,%d,%s,%s\n", entry.Timestamp.UnixMilli(), entry.UserID, entry.Method, entry.Endpoint))
	}
}

func GetLogChannelSize() int {
	return len(logChannel)
}
