package events

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("buffer", Ordered, func() {
	Context("buffer", func() {
		It("add successfully", func() {
			buffer := newBuffer(10)

			// add the first message
			buffer.PushBack(&message{Kind: CalculationCreatedKind, Data: []byte("msg1")})
			Expect(buffer.Size()).To(Equal(1))
			Expect(buffer.head).NotTo(BeNil())
			Expect(buffer.tail).NotTo(BeNil())

			// second
			buffer.PushBack(&message{Kind: CalculationCreatedKind, Data: []byte("msg2")})
			Expect(buffer.Size()).To(Equal(2))
			Expect(buffer.head).NotTo(BeNil())
			Expect(buffer.tail).NotTo(BeNil())

			Expect(buffer.head.Data).To(Equal([]byte("msg1")))
			Expect(buffer.tail.Data).To(Equal([]byte("msg2")))

			// third
			buffer.PushBack(&message{Kind: CalculationCreatedKind, Data: []byte("msg3")})
			Expect(buffer.Size()).To(Equal(3))
			Expect(buffer.head).NotTo(BeNil())
			Expect(buffer.tail).NotTo(BeNil())

			Expect(buffer.head.Data).To(Equal([]byte("msg1")))
			Expect(buffer.tail.Data).To(Equal([]byte("msg3")))
		})

		It("pop", func() {
			buffer := newBuffer(10)

			buffer.PushBack(&message{Kind: CalculationCreatedKind, Data: []byte("msg1")})
			buffer.PushBack(&message{Kind: CalculationCreatedKind, Data: []byte("msg2")})
			buffer.PushBack(&message{Kind: CalculationCreatedKind, Data: []byte("msg3")})
			Expect(buffer.Size()).To(Equal(3))

			m := buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(m.Data).To(Equal([]byte("msg1")))
			Expect(buffer.Size()).To(Equal(2))

			m = buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(m.Data).To(Equal([]byte("msg2")))
			Expect(buffer.Size()).To(Equal(1))

			m = buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(m.Data).To(Equal([]byte("msg3")))
			Expect(buffer.Size()).To(Equal(0))
			Expect(buffer.head).To(BeNil())
			Expect(buffer.tail).To(BeNil())

			// empty buffer
			m = buffer.Pop()
			Expect(m).To(BeNil())
		})

		It("drops the oldest message at capacity", func() {
			buffer := newBuffer(2)

			buffer.PushBack(&message{Kind: CalculationCreatedKind, Data: []byte("msg1")})
			buffer.PushBack(&message{Kind: CalculationCreatedKind, Data: []byte("msg2")})
			Expect(buffer.Size()).To(Equal(2))
			Expect(buffer.Dropped()).To(Equal(0))

			buffer.PushBack(&message{Kind: CalculationCreatedKind, Data: []byte("msg3")})
			Expect(buffer.Size()).To(Equal(2))
			Expect(buffer.Dropped()).To(Equal(1))

			// msg1 is gone
			m := buffer.Pop()
			Expect(m.Data).To(Equal([]byte("msg2")))
			m = buffer.Pop()
			Expect(m.Data).To(Equal([]byte("msg3")))
		})
	})
})
