package types

// Client -> Server
// CREATE_ROOM:
//   hostName: string
//   maxPlayers: number
//
// JOIN_ROOM:
//   roomCode: string
//   playerName: string // matching an existing name reconnects that player
//
// START_GAME:
//   roomCode: string
//
// UPDATE_BET:
//   roomCode: string
//   bet: { [letter]: number } // overwrites the pending distribution
//
// CONFIRM_BET:
//   roomCode: string
//
// REVEAL_RESULT:
//   roomCode: string
//
// NEXT_QUESTION:
//   roomCode: string
//
// KICK_PLAYER:
//   roomCode: string
//   connectionId: string // stale ids are a no-op

// Server -> Client
// STATE_UPDATE (full snapshot, sent on create/join/start/advance):
//   version: number
//   payload:
//     roomCode: string
//     status: "waiting" | "playing" | "finished"
//     players: Player[] // id|connectionId|name|money|status|currentBet|hasConfirmed
//     currentQuestionIndex: number
//     currentQuestion: Question | absent while waiting
//     totalQuestions: number
//     questions: Question[]
//     revealedAnswer: letter | null
//
// STATE_UPDATE (reveal, partial — merge shallowly, last write wins):
//   payload: { players: Player[], revealedAnswer: letter }
//
// PLAYERS_UPDATE:
//   payload: { players: Player[] }
//
// BET_SAVED:
//   payload: { ok: true }
//
// KICKED:
//   payload: { message: string } // sent to the removed connection only
//
// ERROR:
//   payload: { code?: string, message: string }
