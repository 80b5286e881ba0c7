package archive

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cardroom/spades-backend/internal/room"
	"github.com/cardroom/spades-backend/internal/store"
)

// GameRecord is one finished game: the frozen final scores per seat.
type GameRecord struct {
	ID         uint   `gorm:"primaryKey"`
	RoomID     string `gorm:"uniqueIndex;size:64"`
	Rounds     int
	WinnerSeat int
	Seat0      float64
	Seat1      float64
	Seat2      float64
	Seat3      float64
	FinishedAt time.Time
}

// Archive persists finished games to postgres.
type Archive struct {
	db  *gorm.DB
	log *zap.Logger
}

func Open(dsn string, log *zap.Logger) (*Archive, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening archive db: %w", err)
	}
	if err := db.AutoMigrate(&GameRecord{}); err != nil {
		return nil, fmt.Errorf("migrating archive schema: %w", err)
	}
	return &Archive{db: db, log: log}, nil
}

// Watch subscribes to a room document and records it once it reaches
// gameEnd. Intended as a store create hook, so every room is covered.
func (a *Archive) Watch(doc *store.Document) {
	snaps, err := doc.Subscribe("archive:" + doc.ID())
	if err != nil {
		return
	}
	go func() {
		for snap := range snaps {
			if snap.Room.Phase != room.PhaseGameEnd {
				continue
			}
			if err := a.Record(doc.ID(), snap.Room); err != nil {
				a.log.Error("archiving game", zap.String("room", doc.ID()), zap.Error(err))
			}
			doc.Unsubscribe("archive:" + doc.ID())
			return
		}
	}()
}

// Record writes the final scores. The unique index on RoomID makes repeat
// deliveries harmless.
func (a *Archive) Record(roomID string, r room.Room) error {
	if r.Phase != room.PhaseGameEnd || r.FinalScores == nil {
		return fmt.Errorf("room %s is not finished", roomID)
	}
	winner := 0
	for seat, score := range r.FinalScores {
		if score > r.FinalScores[winner] {
			winner = seat
		}
	}
	rec := GameRecord{
		RoomID:     roomID,
		Rounds:     room.MaxRounds,
		WinnerSeat: winner,
		Seat0:      r.FinalScores[0],
		Seat1:      r.FinalScores[1],
		Seat2:      r.FinalScores[2],
		Seat3:      r.FinalScores[3],
		FinishedAt: time.Now().UTC(),
	}
	return a.db.Where(GameRecord{RoomID: roomID}).FirstOrCreate(&rec).Error
}
