// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package corechain

import (
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/logger"

	"github.com/dashpay/platformd/fault"
)

const (
	chainLockTopic   = "rawchainlock"
	instantLockTopic = "rawtxlocksig"

	subscriberSignal = "inproc://corechain-subscriber-signal"
)

// listens for lock announcements from the core chain daemon
type subscriber struct {
	log  *logger.L
	push *zmq.Socket
	pull *zmq.Socket
	sub  *zmq.Socket
}

func newSubscriber(endpoint string) (*subscriber, error) {
	log := logger.New("corechain-sub")

	push, pull, err := signalPair(subscriberSignal)
	if nil != err {
		return nil, err
	}

	sub, err := zmq.NewSocket(zmq.SUB)
	if nil != err {
		return nil, fault.CoreChainUnavailable
	}
	if err := sub.Connect(endpoint); nil != err {
		sub.Close()
		return nil, fault.CoreChainUnavailable
	}
	sub.SetSubscribe(chainLockTopic)
	sub.SetSubscribe(instantLockTopic)

	return &subscriber{
		log:  log,
		push: push,
		pull: pull,
		sub:  sub,
	}, nil
}

// inproc PAIR sockets to break the subscriber out of its poll
func signalPair(signal string) (*zmq.Socket, *zmq.Socket, error) {
	push, err := zmq.NewSocket(zmq.PAIR)
	if nil != err {
		return nil, nil, fault.CoreChainUnavailable
	}
	if err := push.Bind(signal); nil != err {
		push.Close()
		return nil, nil, fault.CoreChainUnavailable
	}

	pull, err := zmq.NewSocket(zmq.PAIR)
	if nil != err {
		push.Close()
		return nil, nil, fault.CoreChainUnavailable
	}
	if err := pull.Connect(signal); nil != err {
		push.Close()
		pull.Close()
		return nil, nil, fault.CoreChainUnavailable
	}
	return push, pull, nil
}

func (s *subscriber) Run(args interface{}, shutdown <-chan struct{}) {

	go func() {
		poller := zmq.NewPoller()
		poller.Add(s.sub, zmq.POLLIN)
		poller.Add(s.pull, zmq.POLLIN)

	loop:
		for {
			polled, _ := poller.Poll(-1)

			for _, p := range polled {
				switch socket := p.Socket; socket {
				case s.pull:
					socket.RecvMessageBytes(0)
					break loop

				default:
					message, err := socket.RecvMessageBytes(0)
					if nil != err {
						s.log.Errorf("receive error: %s", err)
						continue
					}
					s.process(message)
				}
			}
		}

		s.pull.Close()
		s.sub.Close()
		s.log.Info("stopped")
	}()

	s.log.Info("started")

	<-shutdown

	s.log.Info("stopping")
	s.push.SendMessage("stop")
	s.push.Close()
}

func (s *subscriber) process(message [][]byte) {
	if 2 > len(message) {
		s.log.Errorf("short message: %d parts", len(message))
		return
	}

	topic := string(message[0])
	switch topic {
	case instantLockTopic, chainLockTopic:
		markLockSeen(message[1])
		s.log.Debugf("announced: %s: %d bytes", topic, len(message[1]))
	default:
		s.log.Warnf("unexpected topic: %q", topic)
	}
}
